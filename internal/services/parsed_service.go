package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/domainlens/whoisproxy/internal/models"
	apperrors "github.com/domainlens/whoisproxy/pkg/errors"
)

// ParsedService renders a structured view of the same raw WHOIS text the
// core endpoint serves. Unlike the tolerant extractor, this surface is
// allowed to reshape output: dates are additionally normalized to RFC 3339
// UTC when they parse.
type ParsedService struct {
	lookup *LookupService
}

// NewParsedService builds the parsed view on top of the lookup orchestrator,
// so parsed requests share the cache and the two-tier fetch.
func NewParsedService(lookup *LookupService) (*ParsedService, error) {
	if lookup == nil {
		return nil, errors.New("parsed service: lookup service is required")
	}
	return &ParsedService{lookup: lookup}, nil
}

// Parsed fetches (or reuses) the raw WHOIS text for a domain and runs it
// through the parser library.
func (s *ParsedService) Parsed(ctx context.Context, domain string) (*models.ParsedResult, error) {
	result, err := s.lookup.Lookup(ctx, domain)
	if err != nil {
		return nil, err
	}

	info, err := whoisparser.Parse(result.RawData)
	if err != nil {
		return nil, apperrors.ErrProcessingFailed.WithInternal(err)
	}

	parsed := &models.ParsedResult{
		Domain:      result.Domain,
		NameServers: []string{},
		Statuses:    []string{},
	}

	if info.Registrar != nil {
		parsed.Registrar = info.Registrar.Name
	}
	if info.Domain != nil {
		parsed.CreatedDate = info.Domain.CreatedDate
		parsed.ExpirationDate = info.Domain.ExpirationDate
		parsed.UpdatedDate = info.Domain.UpdatedDate
		if len(info.Domain.NameServers) > 0 {
			parsed.NameServers = append(parsed.NameServers, info.Domain.NameServers...)
		}
		if len(info.Domain.Status) > 0 {
			parsed.Statuses = append(parsed.Statuses, info.Domain.Status...)
		}
	}

	parsed.CreatedDateISO = normalizeDate(parsed.CreatedDate)
	parsed.ExpirationDateISO = normalizeDate(parsed.ExpirationDate)
	parsed.UpdatedDateISO = normalizeDate(parsed.UpdatedDate)

	return parsed, nil
}

// normalizeDate renders a registry date as RFC 3339 UTC, or empty when the
// source text does not parse as a date.
func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return ""
	}
	return parsed.UTC().Format(time.RFC3339)
}
