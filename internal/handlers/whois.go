// Package handlers exposes the HTTP endpoints over the lookup services.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/domainlens/whoisproxy/internal/services"
	"github.com/domainlens/whoisproxy/pkg/response"
)

// WhoisHandler serves the lookup endpoints. The parsed and availability
// services are optional; their routes are only mounted when present.
type WhoisHandler struct {
	lookup       *services.LookupService
	parsed       *services.ParsedService
	availability *services.AvailabilityService
}

// NewWhoisHandler wires the lookup services into HTTP handlers.
func NewWhoisHandler(lookup *services.LookupService, parsed *services.ParsedService, availability *services.AvailabilityService) (*WhoisHandler, error) {
	if lookup == nil {
		return nil, errors.New("whois handler: lookup service is required")
	}

	return &WhoisHandler{
		lookup:       lookup,
		parsed:       parsed,
		availability: availability,
	}, nil
}

// Lookup handles GET /whois/:domain.
func (h *WhoisHandler) Lookup(c *gin.Context) {
	result, err := h.lookup.Lookup(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Parsed handles GET /whois/:domain/parsed.
func (h *WhoisHandler) Parsed(c *gin.Context) {
	result, err := h.parsed.Parsed(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Availability handles GET /whois/:domain/availability.
func (h *WhoisHandler) Availability(c *gin.Context) {
	result, err := h.availability.Check(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// HasParsed reports whether the parsed route should be mounted.
func (h *WhoisHandler) HasParsed() bool { return h.parsed != nil }

// HasAvailability reports whether the availability route should be mounted.
func (h *WhoisHandler) HasAvailability() bool { return h.availability != nil }
