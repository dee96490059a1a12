// Package app holds process-level wiring: configuration loading and the
// logging bootstrap shared by the server binary and its tests.
package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	playground "github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/domainlens/whoisproxy/internal/cache"
	"github.com/domainlens/whoisproxy/pkg/validator"
)

// Config represents the runtime configuration for the WHOIS proxy.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" json:"server"`
	Lookup      LookupConfig      `mapstructure:"lookup" json:"lookup"`
	Cache       CacheConfig       `mapstructure:"cache" json:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit" json:"rate_limit"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring" json:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" json:"maintenance"`
	Logging     LoggingConfig     `mapstructure:"logging" json:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int    `mapstructure:"port" json:"port" validate:"min=1,max=65535"`
	Mode string `mapstructure:"mode" json:"mode" validate:"oneof=debug release test"`
}

// LookupConfig controls the upstream WHOIS clients.
type LookupConfig struct {
	// Timeout bounds each lookup attempt; both tiers get their own budget.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	// Server optionally pins the WHOIS server instead of following IANA
	// referrals. Empty means automatic server selection.
	Server        string  `mapstructure:"server" json:"server"`
	ThrottleRPS   float64 `mapstructure:"throttle_rps" json:"throttle_rps" validate:"gte=0"`
	ThrottleBurst int     `mapstructure:"throttle_burst" json:"throttle_burst" validate:"gte=0"`
}

// CacheConfig describes the lookup result cache.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl" json:"ttl" validate:"gt=0"`
	Backend string        `mapstructure:"backend" json:"backend" validate:"oneof=memory redis"`
	Redis   RedisConfig   `mapstructure:"redis" json:"redis"`
}

// RedisConfig holds Redis connection options.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" json:"addr"`
	Password string        `mapstructure:"password" json:"-"`
	DB       int           `mapstructure:"db" json:"db" validate:"gte=0"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
}

// RateLimitConfig caps requests per client IP within a fixed window.
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit" json:"limit" validate:"gte=0"`
	Window time.Duration `mapstructure:"window" json:"window" validate:"gt=0"`
	// Backend selects where counters live: "memory" for process-local
	// windows, "cache" to share them through the configured cache store.
	Backend string `mapstructure:"backend" json:"backend" validate:"oneof=memory cache"`
}

// MonitoringConfig toggles the metrics and health surfaces.
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// MaintenanceConfig controls the background pruning scheduler.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	Schedule string `mapstructure:"schedule" json:"schedule" validate:"cronspec"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level    string `mapstructure:"level" json:"level" validate:"oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" json:"encoding" validate:"oneof=json console"`
}

// LoadConfig initialises application configuration using Viper with sensible
// defaults. Additional search paths take precedence over the built-in ones.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("whoisproxy")
	v.SetConfigType("yaml")

	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/whoisproxy")

	setDefaults(v)

	v.SetEnvPrefix("WHOISPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &config, nil
}

// Validate checks field constraints, including the maintenance cron spec.
func (c *Config) Validate() error {
	registerCronRule()
	return validator.ValidateStruct(c)
}

// RedisEnabled reports whether any component needs a Redis connection.
func (c *Config) RedisEnabled() bool {
	return c.Cache.Backend == "redis"
}

// RedisStoreConfig converts the configuration into cache connection options.
func (c *Config) RedisStoreConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
		Timeout:  c.Cache.Redis.Timeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("lookup.timeout", "20s")
	v.SetDefault("lookup.server", "")
	v.SetDefault("lookup.throttle_rps", 4)
	v.SetDefault("lookup.throttle_burst", 2)

	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("rate_limit.limit", 100)
	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("rate_limit.backend", "memory")

	v.SetDefault("monitoring.enabled", true)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "*/10 * * * *")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

var cronRuleOnce sync.Once

// registerCronRule installs the "cronspec" validation backed by the same
// parser the scheduler uses, so a spec that validates is a spec that runs.
func registerCronRule() {
	cronRuleOnce.Do(func() {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		_ = validator.RegisterValidation("cronspec", func(fl playground.FieldLevel) bool {
			spec := strings.TrimSpace(fl.Field().String())
			if spec == "" {
				return false
			}
			_, err := parser.Parse(spec)
			return err == nil
		})
	})
}
