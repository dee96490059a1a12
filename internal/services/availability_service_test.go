package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainlens/whoisproxy/internal/cache"
	"github.com/domainlens/whoisproxy/internal/upstream"
	apperrors "github.com/domainlens/whoisproxy/pkg/errors"
)

type stubRDAP struct {
	record *upstream.RDAPDomain
	err    error
}

func (s stubRDAP) Domain(context.Context, string) (*upstream.RDAPDomain, error) {
	return s.record, s.err
}

type stubNS struct {
	delegated bool
	err       error
}

func (s stubNS) HasNameServers(context.Context, string) (bool, error) {
	return s.delegated, s.err
}

func newAvailabilityForTest(t *testing.T, rdap RDAPProber, raw string, rawErr error, dns NSProber) *AvailabilityService {
	t.Helper()

	primary := &stubLookuper{raw: raw, err: rawErr}
	lookup := newLookupForTest(t, primary, nil, cache.NewMemoryStore())
	svc, err := NewAvailabilityService(rdap, lookup, dns)
	require.NoError(t, err)
	return svc
}

func TestAvailabilityRDAPNotRegistered(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityForTest(t,
		stubRDAP{err: upstream.ErrDomainNotRegistered},
		"", errors.New("unused"), nil)

	result, err := svc.Check(context.Background(), "free-domain.example")
	require.NoError(t, err)
	require.True(t, result.Available)
	require.Equal(t, MethodRDAP, result.Method)
	require.False(t, result.CheckedAt.IsZero())
}

func TestAvailabilityRDAPRegistered(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityForTest(t,
		stubRDAP{record: &upstream.RDAPDomain{LDHName: "example.com"}},
		"", errors.New("unused"), nil)

	result, err := svc.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.False(t, result.Available)
	require.Equal(t, MethodRDAP, result.Method)
}

func TestAvailabilityWhoisMarkerFallback(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityForTest(t,
		stubRDAP{err: errors.New("rdap: 503")},
		"No match for \"FREE-DOMAIN.EXAMPLE\".\n", nil, nil)

	result, err := svc.Check(context.Background(), "free-domain.example")
	require.NoError(t, err)
	require.True(t, result.Available)
	require.Equal(t, MethodWhois, result.Method)
}

func TestAvailabilityWhoisRegisteredMarker(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityForTest(t, stubRDAP{err: errors.New("rdap: 503")}, sampleWhois, nil, nil)

	result, err := svc.Check(context.Background(), "example.com")
	require.NoError(t, err)
	require.False(t, result.Available)
	require.Equal(t, MethodWhois, result.Method)
}

func TestAvailabilityDNSTiebreak(t *testing.T) {
	t.Parallel()

	// WHOIS text matches no marker, so the delegation probe decides.
	svc := newAvailabilityForTest(t,
		stubRDAP{err: errors.New("rdap: 503")},
		"% nothing recognisable here\n", nil,
		stubNS{delegated: false})

	result, err := svc.Check(context.Background(), "maybe-free.example")
	require.NoError(t, err)
	require.True(t, result.Available)
	require.Equal(t, MethodDNS, result.Method)
}

func TestAvailabilityAllProbesFail(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityForTest(t,
		stubRDAP{err: errors.New("rdap: connection refused")},
		"", errors.New("whois: connection refused"),
		stubNS{err: errors.New("dns: servfail")})

	_, err := svc.Check(context.Background(), "example.com")
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, "LOOKUP_FAILED", appErr.Code)
	require.Contains(t, appErr.Details(), "rdap: connection refused")
	require.Contains(t, appErr.Details(), "dns: servfail")
}

func TestAvailabilityRejectsInvalidDomain(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityForTest(t, stubRDAP{}, sampleWhois, nil, nil)

	_, err := svc.Check(context.Background(), "bad domain!")
	require.Error(t, err)
	require.Equal(t, "INVALID_DOMAIN", apperrors.FromError(err).Code)
}

func TestScanMarkers(t *testing.T) {
	t.Parallel()

	available, conclusive := scanMarkers("NOT FOUND\n")
	require.True(t, available)
	require.True(t, conclusive)

	available, conclusive = scanMarkers(sampleWhois)
	require.False(t, available)
	require.True(t, conclusive)

	_, conclusive = scanMarkers("% unrecognised registry banner\n")
	require.False(t, conclusive)
}
