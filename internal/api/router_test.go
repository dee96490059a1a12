package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/domainlens/whoisproxy/internal/app"
	"github.com/domainlens/whoisproxy/internal/cache"
	"github.com/domainlens/whoisproxy/internal/handlers"
	"github.com/domainlens/whoisproxy/internal/middleware"
	"github.com/domainlens/whoisproxy/internal/models"
	"github.com/domainlens/whoisproxy/internal/monitoring"
	"github.com/domainlens/whoisproxy/internal/services"
)

const sampleWhois = `Domain Name: EXAMPLE.COM
Creation Date: 1995-08-14T04:00:00Z
Registry Expiry Date: 2026-08-13T04:00:00Z
Registrar: RESERVED-Internet Assigned Numbers Authority
`

type staticLookuper struct{}

func (staticLookuper) Lookup(context.Context, string) (string, error) {
	return sampleWhois, nil
}

func testConfig() *app.Config {
	cfg := &app.Config{}
	cfg.Server.Port = 8080
	cfg.RateLimit.Limit = 2
	cfg.RateLimit.Window = time.Minute
	cfg.Monitoring.Enabled = true
	return cfg
}

func newRouterForTest(t *testing.T, cfg *app.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lookup, err := services.NewLookupService(staticLookuper{}, nil, cache.NewMemoryStore(), time.Hour, time.Second)
	require.NoError(t, err)
	parsed, err := services.NewParsedService(lookup)
	require.NoError(t, err)

	whois, err := handlers.NewWhoisHandler(lookup, parsed, nil)
	require.NoError(t, err)

	mod, err := monitoring.NewModule(monitoring.Options{})
	require.NoError(t, err)
	monitoring.SetModule(mod)

	router, err := NewRouter(Deps{
		Config:     cfg,
		Whois:      whois,
		Monitoring: mod,
		Summary:    handlers.NewMonitoringHandler(cfg),
		RateStore:  middleware.NewStoreRateStore(cache.NewMemoryStore()),
	})
	require.NoError(t, err)
	return router
}

func TestRouterServesLookup(t *testing.T) {
	router := newRouterForTest(t, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whois/example.com", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var result models.LookupResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Equal(t, "example.com", result.Domain)
}

func TestRouterRateLimitsLookupsOnly(t *testing.T) {
	router := newRouterForTest(t, testConfig())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whois/example.com", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whois/example.com", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health and metrics stay reachable for a throttled client.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newRouterForTest(t, testConfig())

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterMonitoringSummary(t *testing.T) {
	router := newRouterForTest(t, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "summary")
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newRouterForTest(t, testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "/nope")
}

func TestRouterMonitoringDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Monitoring.Enabled = false

	gin.SetMode(gin.TestMode)
	lookup, err := services.NewLookupService(staticLookuper{}, nil, cache.NewMemoryStore(), time.Hour, time.Second)
	require.NoError(t, err)
	whois, err := handlers.NewWhoisHandler(lookup, nil, nil)
	require.NoError(t, err)

	router, err := NewRouter(Deps{Config: cfg, Whois: whois})
	require.NoError(t, err)

	// Parsed route is unmounted without the service.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whois/example.com/parsed", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	// Basic liveness answer still responds.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
