// Package api builds the Gin engine: middleware chain and route registration.
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/domainlens/whoisproxy/internal/app"
	"github.com/domainlens/whoisproxy/internal/handlers"
	"github.com/domainlens/whoisproxy/internal/middleware"
	"github.com/domainlens/whoisproxy/internal/monitoring"
)

// Deps carries the wired components the router mounts.
type Deps struct {
	Config     *app.Config
	Whois      *handlers.WhoisHandler
	Monitoring *monitoring.Module          // nil disables /metrics and health probes
	Summary    *handlers.MonitoringHandler // nil disables /monitoring/summary
	RateStore  middleware.RateStore        // nil disables rate limiting
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
// The rate ceiling applies to lookup routes only; health and metrics stay
// reachable for probes even from a throttled client.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Whois == nil {
		return nil, fmt.Errorf("whois handler must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	rateLimit := middleware.RateLimit(deps.RateStore, deps.Config.RateLimit.Limit, deps.Config.RateLimit.Window)

	registerWhoisRoutes(r, rateLimit, deps.Whois)
	registerHealthRoutes(r, deps.Config, deps.Monitoring)
	registerMonitoringRoutes(r, deps.Summary, deps.Monitoring)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
