package api

import (
	"github.com/gin-gonic/gin"

	"github.com/domainlens/whoisproxy/internal/handlers"
)

func registerWhoisRoutes(r *gin.Engine, rateLimit gin.HandlerFunc, handler *handlers.WhoisHandler) {
	group := r.Group("/whois")
	group.Use(rateLimit)

	group.GET("/:domain", handler.Lookup)
	if handler.HasParsed() {
		group.GET("/:domain/parsed", handler.Parsed)
	}
	if handler.HasAvailability() {
		group.GET("/:domain/availability", handler.Availability)
	}
}
