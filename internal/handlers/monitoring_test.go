package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/domainlens/whoisproxy/internal/app"
	"github.com/domainlens/whoisproxy/internal/monitoring"
)

func TestNewMonitoringHandlerDisabled(t *testing.T) {
	require.Nil(t, NewMonitoringHandler(nil))
	require.Nil(t, NewMonitoringHandler(&app.Config{}))
}

func TestMonitoringSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mod, err := monitoring.NewModule(monitoring.Options{})
	require.NoError(t, err)
	monitoring.SetModule(mod)
	monitoring.RecordCacheEvent("hit")

	cfg := &app.Config{}
	cfg.Monitoring.Enabled = true

	handler := NewMonitoringHandler(cfg)
	require.NotNil(t, handler)

	r := gin.New()
	r.GET("/monitoring/summary", handler.Summary)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/summary", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Summary    monitoring.Summary `json:"summary"`
		Prometheus struct {
			Enabled  bool   `json:"enabled"`
			Endpoint string `json:"endpoint"`
		} `json:"prometheus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Prometheus.Enabled)
	require.Equal(t, "/metrics", payload.Prometheus.Endpoint)
	require.GreaterOrEqual(t, payload.Summary.Cache.Hits, uint64(1))
}
