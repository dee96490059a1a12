// Package services implements the lookup orchestration on top of the
// upstream clients: two-tier WHOIS fetch, field extraction, result caching
// and the supplemental parsed and availability views.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/domainlens/whoisproxy/internal/cache"
	"github.com/domainlens/whoisproxy/internal/extract"
	"github.com/domainlens/whoisproxy/internal/models"
	"github.com/domainlens/whoisproxy/internal/monitoring"
	"github.com/domainlens/whoisproxy/internal/upstream"
	apperrors "github.com/domainlens/whoisproxy/pkg/errors"
	"github.com/domainlens/whoisproxy/pkg/logger"
)

const (
	defaultCacheTTL      = time.Hour
	defaultLookupTimeout = 20 * time.Second

	lookupKeyPrefix = "lookup:"
)

// RawLookuper fetches raw WHOIS text for a domain. Both the library client
// and the system-command client satisfy it.
type RawLookuper interface {
	Lookup(ctx context.Context, domain string) (string, error)
}

// LookupService orchestrates WHOIS lookups: cache first, then the library
// client, then the system whois command once the domain has passed the
// allow-list. Concurrent lookups for the same uncached domain are not
// deduplicated; each populates the cache on completion and the last writer
// wins, which is harmless because results are idempotent within the TTL.
type LookupService struct {
	primary  RawLookuper
	fallback RawLookuper
	store    cache.Store
	ttl      time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewLookupService wires the two lookup tiers and the result cache.
// fallback may be nil, in which case the escalation step is skipped.
func NewLookupService(primary, fallback RawLookuper, store cache.Store, ttl, timeout time.Duration) (*LookupService, error) {
	if primary == nil {
		return nil, errors.New("lookup service: primary client is required")
	}
	if store == nil {
		return nil, errors.New("lookup service: cache store is required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	return &LookupService{
		primary:  primary,
		fallback: fallback,
		store:    store,
		ttl:      ttl,
		timeout:  timeout,
		log:      logger.WithModule("lookup"),
	}, nil
}

// Lookup returns the registration metadata for a domain, serving from the
// cache when a live entry exists and populating it otherwise.
func (s *LookupService) Lookup(ctx context.Context, domain string) (*models.LookupResult, error) {
	key := NormalizeDomain(domain)
	if key == "" {
		return nil, apperrors.NewInvalidDomain(domain)
	}

	if cached, ok := s.cachedResult(ctx, key); ok {
		monitoring.RecordCacheEvent("hit")
		return cached, nil
	}
	monitoring.RecordCacheEvent("miss")

	raw, err := s.fetchRaw(ctx, key)
	if err != nil {
		return nil, err
	}

	fields := extract.Extract(raw)
	result := &models.LookupResult{
		Domain:         key,
		CreationDate:   fields.CreationDate,
		ExpirationDate: fields.ExpirationDate,
		Registrar:      fields.Registrar,
		RawData:        raw,
	}

	s.cacheResult(ctx, key, result)
	return result, nil
}

// FetchRaw exposes the two-tier fetch for services that interpret the raw
// text themselves, such as the availability checker.
func (s *LookupService) FetchRaw(ctx context.Context, domain string) (string, error) {
	key := NormalizeDomain(domain)
	if key == "" {
		return "", apperrors.NewInvalidDomain(domain)
	}
	return s.fetchRaw(ctx, key)
}

// Timeout reports the per-attempt deadline lookups run under.
func (s *LookupService) Timeout() time.Duration {
	return s.timeout
}

// fetchRaw runs the primary library lookup and, on failure, escalates once to
// the system command. The allow-list check sits between the tiers: an
// unvetted domain never reaches the external binary.
func (s *LookupService) fetchRaw(ctx context.Context, domain string) (string, error) {
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	raw, primaryErr := s.primary.Lookup(attemptCtx, domain)
	cancel()

	if primaryErr == nil && strings.TrimSpace(raw) != "" {
		monitoring.RecordLookup("success", "library", time.Since(start))
		return raw, nil
	}
	if primaryErr == nil {
		primaryErr = errors.New("whois library: empty response")
	}

	if err := ValidateDomain(domain); err != nil {
		monitoring.RecordLookup("invalid", "library", time.Since(start))
		return "", err
	}

	if s.fallback == nil {
		return "", s.classifyFailure(domain, start, primaryErr)
	}

	s.log.Debug("primary lookup failed, escalating to system whois",
		zap.String("domain", domain),
		zap.Error(primaryErr),
	)

	attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
	raw, fallbackErr := s.fallback.Lookup(attemptCtx, domain)
	cancel()

	if fallbackErr == nil && strings.TrimSpace(raw) != "" {
		monitoring.RecordLookup("success", "system", time.Since(start))
		return raw, nil
	}
	if fallbackErr == nil {
		fallbackErr = errors.New("whois command: empty response")
	}

	return "", s.classifyFailure(domain, start, primaryErr, fallbackErr)
}

// classifyFailure bundles the per-tier errors and picks the failure class:
// a deadline expiry anywhere in the chain reports as a timeout, everything
// else as a generic lookup failure.
func (s *LookupService) classifyFailure(domain string, start time.Time, attempts ...error) error {
	var bundle error
	timedOut := false
	for _, err := range attempts {
		bundle = multierr.Append(bundle, err)
		if upstream.IsTimeout(err) {
			timedOut = true
		}
	}

	s.log.Warn("whois lookup failed",
		zap.String("domain", domain),
		zap.Bool("timeout", timedOut),
		zap.Error(bundle),
	)

	if timedOut {
		monitoring.RecordLookup("timeout", "system", time.Since(start))
		return apperrors.ErrLookupTimeout.WithInternal(bundle)
	}
	monitoring.RecordLookup("failure", "system", time.Since(start))
	return apperrors.ErrLookupFailed.WithInternal(bundle)
}

func (s *LookupService) cachedResult(ctx context.Context, key string) (*models.LookupResult, bool) {
	payload, ok, err := s.store.Get(ctx, lookupKeyPrefix+key)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("domain", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var result models.LookupResult
	if err := json.Unmarshal(payload, &result); err != nil {
		// A corrupt entry is dropped so the next request refreshes it.
		s.log.Warn("cache entry corrupt", zap.String("domain", key), zap.Error(err))
		_ = s.store.Delete(ctx, lookupKeyPrefix+key)
		return nil, false
	}

	return &result, true
}

// cacheResult stores the rendered result. Cache write failures degrade to an
// uncached response rather than failing the request.
func (s *LookupService) cacheResult(ctx context.Context, key string, result *models.LookupResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("cache encode failed", zap.String("domain", key), zap.Error(err))
		return
	}

	if err := s.store.Set(ctx, lookupKeyPrefix+key, payload, s.ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("domain", key), zap.Error(err))
		return
	}
	monitoring.RecordCacheEvent("store")
}
