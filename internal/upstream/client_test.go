package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/likexian/whois"
	"github.com/stretchr/testify/require"
)

func TestNewClientStripsPinnedServerPort(t *testing.T) {
	cases := map[string][]string{
		"whois.iana.org:43": {"whois.iana.org"},
		"whois.iana.org":    {"whois.iana.org"},
		" whois.nic.io ":    {"whois.nic.io"},
		"127.0.0.1:4343":    {"127.0.0.1"},
		"":                  nil,
	}

	for input, want := range cases {
		client := NewClient(time.Second, input, nil)
		require.Equal(t, want, client.servers(), "server %q", input)
	}
}

func TestClientLookupExpiredDeadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	// Pin to loopback so the abandoned goroutine fails fast instead of
	// reaching a real registry.
	client := NewClient(2*time.Second, "127.0.0.1", nil)
	_, err := client.Lookup(ctx, "example.com")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, IsTimeout(err), "expected a timeout classification, got %v", err)
}

func TestClientLookupEmptyDomain(t *testing.T) {
	client := NewClient(time.Second, "", nil)

	_, err := client.Lookup(context.Background(), "")

	require.ErrorIs(t, err, whois.ErrDomainEmpty)
}

func TestClientLookupContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(2*time.Second, "127.0.0.1", nil)
	_, err := client.Lookup(ctx, "example.com")

	require.ErrorIs(t, err, context.Canceled)
}

func TestClientDefaultsTimeout(t *testing.T) {
	client := NewClient(0, "", nil)

	require.Equal(t, defaultTimeout, client.Timeout())
}

func TestThrottleKey(t *testing.T) {
	cases := map[string]string{
		"example.com":     "com",
		"EXAMPLE.ORG":     "org",
		"a.b.example.dev": "dev",
		"example.com.":    "com",
		"localhost":       "localhost",
	}

	for domain, want := range cases {
		require.Equal(t, want, ThrottleKey(domain), "domain %q", domain)
	}
}
