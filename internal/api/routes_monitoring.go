package api

import (
	"github.com/gin-gonic/gin"

	"github.com/domainlens/whoisproxy/internal/handlers"
	"github.com/domainlens/whoisproxy/internal/monitoring"
)

func registerMonitoringRoutes(r *gin.Engine, summary *handlers.MonitoringHandler, mon *monitoring.Module) {
	if mon != nil {
		r.GET("/metrics", gin.WrapH(mon.Handler()))
	}

	if summary != nil {
		r.GET("/monitoring/summary", summary.Summary)
	}
}
