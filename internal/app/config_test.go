package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.Mode)

	require.Equal(t, 5*time.Second, cfg.Lookup.Timeout)
	require.Equal(t, "whois.example.net", cfg.Lookup.Server)
	require.Equal(t, 2.0, cfg.Lookup.ThrottleRPS)
	require.Equal(t, 1, cfg.Lookup.ThrottleBurst)

	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "redis", cfg.Cache.Backend)
	require.True(t, cfg.RedisEnabled())
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Addr)
	require.Equal(t, "hunter2", cfg.Cache.Redis.Password)
	require.Equal(t, 3, cfg.Cache.Redis.DB)

	require.Equal(t, 25, cfg.RateLimit.Limit)
	require.Equal(t, 5*time.Minute, cfg.RateLimit.Window)
	require.Equal(t, "cache", cfg.RateLimit.Backend)

	require.False(t, cfg.Monitoring.Enabled)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "0 * * * *", cfg.Maintenance.Schedule)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "console", cfg.Logging.Encoding)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, 20*time.Second, cfg.Lookup.Timeout)
	require.Equal(t, time.Hour, cfg.Cache.TTL)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.False(t, cfg.RedisEnabled())
	require.Equal(t, 100, cfg.RateLimit.Limit)
	require.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	require.True(t, cfg.Monitoring.Enabled)
	require.Equal(t, "*/10 * * * *", cfg.Maintenance.Schedule)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("WHOISPROXY_SERVER_PORT", "8181")
	t.Setenv("WHOISPROXY_CACHE_TTL", "10m")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 8181, cfg.Server.Port)
	require.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg, err = LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Maintenance.Schedule = "not a cron spec"
	require.Error(t, cfg.Validate())

	cfg, err = LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Cache.Backend = "memcached"
	require.Error(t, cfg.Validate())
}

func TestConfigAcceptsCronDescriptors(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Maintenance.Schedule = "@hourly"
	require.NoError(t, cfg.Validate())
}
