package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/domainlens/whoisproxy/internal/app"
	"github.com/domainlens/whoisproxy/pkg/logger"
)

func testBootstrapConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Server.Port = 0
	cfg.Server.Mode = "test"
	cfg.Lookup.Timeout = time.Second
	cfg.Lookup.ThrottleRPS = 100
	cfg.Lookup.ThrottleBurst = 10
	cfg.Cache.TTL = time.Hour
	cfg.Cache.Backend = "memory"
	cfg.RateLimit.Limit = 100
	cfg.RateLimit.Window = time.Minute
	cfg.RateLimit.Backend = "memory"
	cfg.Monitoring.Enabled = true
	cfg.Maintenance.Enabled = true
	cfg.Maintenance.Schedule = "*/10 * * * *"
	return cfg
}

func TestBootstrapRuntimeMemoryBackend(t *testing.T) {
	cfg := testBootstrapConfig()

	stack, err := bootstrapRuntime(cfg, logger.WithModule("test"))
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), logger.WithModule("test")) })

	require.NotNil(t, stack.Store)
	require.Nil(t, stack.Redis)
	require.NotNil(t, stack.Monitoring)
	require.NotNil(t, stack.Cleaner)
	require.NotNil(t, stack.RateStore)
	require.NotNil(t, stack.Router)

	// Health endpoint answers through the wired router.
	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Metrics surface is mounted.
	w = httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapRuntimeMonitoringDisabled(t *testing.T) {
	cfg := testBootstrapConfig()
	cfg.Monitoring.Enabled = false
	cfg.Maintenance.Enabled = false

	stack, err := bootstrapRuntime(cfg, logger.WithModule("test"))
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), logger.WithModule("test")) })

	require.Nil(t, stack.Monitoring)
	require.Nil(t, stack.Cleaner)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGinMode(t *testing.T) {
	require.Equal(t, gin.DebugMode, ginMode("debug"))
	require.Equal(t, gin.TestMode, ginMode("test"))
	require.Equal(t, gin.ReleaseMode, ginMode("release"))
	require.Equal(t, gin.ReleaseMode, ginMode(""))
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig("/does/not/exist")
	require.Error(t, err)
}
