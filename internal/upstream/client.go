// Package upstream holds the clients this service composes lookups from:
// the WHOIS client library, the system whois binary, the RDAP probe and the
// DNS delegation probe. All of them are opaque collaborators; result
// interpretation lives in the service layer.
package upstream

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
)

const defaultTimeout = 20 * time.Second

// Client performs WHOIS lookups through the registry's declared server,
// following referrals. Every call is bounded by the configured timeout and
// reserves a slot on the per-registry throttle before dialing.
type Client struct {
	wc       *whois.Client
	server   string
	timeout  time.Duration
	throttle *Throttle
}

// NewClient builds a WHOIS client. server optionally pins every query to one
// WHOIS server instead of the registry resolution chain; throttle may be nil.
// The library dials port 43 unconditionally, so a trailing :port on the
// pinned server would be treated as part of the hostname; strip it here.
func NewClient(timeout time.Duration, server string, throttle *Throttle) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	server = strings.TrimSpace(server)
	if host, _, err := net.SplitHostPort(server); err == nil {
		server = host
	}

	// Stats trailers would pollute the raw payload served to clients.
	wc := whois.NewClient()
	wc.SetTimeout(timeout)
	wc.SetDisableStats(true)

	return &Client{
		wc:       wc,
		server:   server,
		timeout:  timeout,
		throttle: throttle,
	}
}

type lookupReply struct {
	raw string
	err error
}

// Lookup queries WHOIS data for the domain. The library call carries its own
// dial/read deadlines; the surrounding select adds context cancellation so an
// abandoned request does not hold its handler slot.
func (c *Client) Lookup(ctx context.Context, domain string) (string, error) {
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx, ThrottleKey(domain)); err != nil {
			return "", err
		}
	}

	done := make(chan lookupReply, 1)
	go func() {
		raw, err := c.wc.Whois(domain, c.servers()...)
		done <- lookupReply{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case reply := <-done:
		return reply.raw, reply.err
	}
}

func (c *Client) servers() []string {
	if c.server == "" {
		return nil
	}
	return []string{c.server}
}

// Timeout reports the per-attempt deadline the client was built with.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// ThrottleKey maps a domain to the registry endpoint it will be served by.
// Queries are throttled per top-level domain, which tracks one registry
// closely enough for courtesy limiting.
func ThrottleKey(domain string) string {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if idx := strings.LastIndex(domain, "."); idx >= 0 && idx < len(domain)-1 {
		return domain[idx+1:]
	}
	return domain
}
