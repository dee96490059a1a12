package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/domainlens/whoisproxy/internal/app"
	"github.com/domainlens/whoisproxy/internal/monitoring"
	"github.com/domainlens/whoisproxy/pkg/response"
)

// MonitoringHandler surfaces aggregated lookup statistics for operators.
type MonitoringHandler struct {
	cfg *app.Config
}

// NewMonitoringHandler constructs a monitoring handler. Returns nil when
// monitoring is disabled, which keeps the routes unmounted.
func NewMonitoringHandler(cfg *app.Config) *MonitoringHandler {
	if cfg == nil || !cfg.Monitoring.Enabled {
		return nil
	}
	return &MonitoringHandler{cfg: cfg}
}

// Summary handles GET /monitoring/summary.
func (h *MonitoringHandler) Summary(c *gin.Context) {
	response.OK(c, gin.H{
		"summary": monitoring.Snapshot(),
		"prometheus": gin.H{
			"enabled":  true,
			"endpoint": "/metrics",
		},
	})
}
