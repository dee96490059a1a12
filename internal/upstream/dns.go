package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const defaultResolver = "1.1.1.1:53"

// NSProbe checks whether a domain has delegated name servers. It is the
// availability tiebreaker: a live NS delegation means the domain is taken
// even when neither RDAP nor WHOIS gave a usable answer.
type NSProbe struct {
	client   *dns.Client
	resolver string
}

// NewNSProbe builds a probe against the given resolver address
// (host:port; defaults to a public resolver).
func NewNSProbe(resolver string, timeout time.Duration) *NSProbe {
	resolver = strings.TrimSpace(resolver)
	if resolver == "" {
		resolver = defaultResolver
	}
	if !strings.Contains(resolver, ":") {
		resolver += ":53"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := new(dns.Client)
	client.Timeout = timeout

	return &NSProbe{client: client, resolver: resolver}
}

// HasNameServers reports whether the domain resolves to at least one NS
// record. NXDOMAIN answers report false without error.
func (p *NSProbe) HasNameServers(ctx context.Context, domain string) (bool, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)

	resp, _, err := p.client.ExchangeContext(ctx, msg, p.resolver)
	if err != nil {
		return false, fmt.Errorf("ns probe: %w", err)
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		// fall through to answer inspection
	case dns.RcodeNameError:
		return false, nil
	default:
		return false, fmt.Errorf("ns probe: rcode %s", dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		if _, ok := rr.(*dns.NS); ok {
			return true, nil
		}
	}
	return false, nil
}
