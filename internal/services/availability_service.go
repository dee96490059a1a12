package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/domainlens/whoisproxy/internal/models"
	"github.com/domainlens/whoisproxy/internal/monitoring"
	"github.com/domainlens/whoisproxy/internal/upstream"
	apperrors "github.com/domainlens/whoisproxy/pkg/errors"
	"github.com/domainlens/whoisproxy/pkg/logger"
)

// Availability verdict methods, in probe order.
const (
	MethodRDAP  = "rdap"
	MethodWhois = "whois"
	MethodDNS   = "dns"
)

// Registry phrasings that mark a domain as unregistered in raw WHOIS text.
// Matched lowercase.
var notRegisteredMarkers = []string{
	"no match for",
	"not found",
	"no entries found",
	"no data found",
	"object does not exist",
	"no objects found",
	"domain not found",
	"status: free",
	"available for registration",
	"this domain name has not been registered",
}

// Fields whose presence marks a domain as registered. Matched lowercase.
var registeredMarkers = []string{
	"domain name:",
	"registrar:",
	"creation date:",
	"registered on:",
	"domain status:",
	"registrant:",
	"registry domain id:",
	"nserver:",
}

// RDAPProber answers whether a domain exists in the registry's RDAP service.
type RDAPProber interface {
	Domain(ctx context.Context, domain string) (*upstream.RDAPDomain, error)
}

// NSProber reports whether a domain has a live name-server delegation.
type NSProber interface {
	HasNameServers(ctx context.Context, domain string) (bool, error)
}

// AvailabilityService decides whether a domain appears registrable. Probes
// run in order of answer quality: RDAP gives an authoritative yes/no, raw
// WHOIS text is scanned for registry markers, and a DNS delegation probe
// breaks the tie when neither upstream produced a usable answer.
type AvailabilityService struct {
	rdap   RDAPProber
	lookup *LookupService
	dns    NSProber
	log    *zap.Logger
	now    func() time.Time
}

// NewAvailabilityService wires the three probe tiers. rdap and dns may be nil
// to skip their tiers.
func NewAvailabilityService(rdap RDAPProber, lookup *LookupService, dns NSProber) (*AvailabilityService, error) {
	if lookup == nil {
		return nil, errors.New("availability service: lookup service is required")
	}

	return &AvailabilityService{
		rdap:   rdap,
		lookup: lookup,
		dns:    dns,
		log:    logger.WithModule("availability"),
		now:    time.Now,
	}, nil
}

// Check probes the domain's registration state.
func (s *AvailabilityService) Check(ctx context.Context, domain string) (*models.AvailabilityResult, error) {
	key := NormalizeDomain(domain)
	if err := ValidateDomain(key); err != nil {
		return nil, err
	}

	var probeErrs error

	if s.rdap != nil {
		record, err := s.rdap.Domain(ctx, key)
		switch {
		case errors.Is(err, upstream.ErrDomainNotRegistered):
			return s.verdict(key, true, MethodRDAP), nil
		case err == nil && record != nil:
			return s.verdict(key, false, MethodRDAP), nil
		default:
			probeErrs = multierr.Append(probeErrs, err)
			s.log.Debug("rdap probe inconclusive", zap.String("domain", key), zap.Error(err))
		}
	}

	raw, err := s.lookup.FetchRaw(ctx, key)
	if err != nil {
		probeErrs = multierr.Append(probeErrs, err)
	} else if available, ok := scanMarkers(raw); ok {
		return s.verdict(key, available, MethodWhois), nil
	}

	if s.dns != nil {
		delegated, err := s.dns.HasNameServers(ctx, key)
		if err == nil {
			return s.verdict(key, !delegated, MethodDNS), nil
		}
		probeErrs = multierr.Append(probeErrs, err)
	}

	monitoring.RecordAvailabilityCheck("none", "error")
	return nil, apperrors.ErrLookupFailed.WithInternal(probeErrs)
}

func (s *AvailabilityService) verdict(domain string, available bool, method string) *models.AvailabilityResult {
	outcome := "registered"
	if available {
		outcome = "available"
	}
	monitoring.RecordAvailabilityCheck(method, outcome)

	return &models.AvailabilityResult{
		Domain:    domain,
		Available: available,
		Method:    method,
		CheckedAt: s.now().UTC(),
	}
}

// scanMarkers inspects raw WHOIS text for registration markers. The second
// return reports whether any marker matched at all; unrecognised responses
// fall through to the DNS tiebreaker.
func scanMarkers(raw string) (available, conclusive bool) {
	lower := strings.ToLower(raw)

	for _, marker := range notRegisteredMarkers {
		if strings.Contains(lower, marker) {
			return true, true
		}
	}
	for _, marker := range registeredMarkers {
		if strings.Contains(lower, marker) {
			return false, true
		}
	}
	return false, false
}
