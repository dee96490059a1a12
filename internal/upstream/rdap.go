package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultRDAPBaseURL = "https://rdap.org"

// ErrDomainNotRegistered reports an authoritative RDAP answer that the
// domain does not exist in the registry.
var ErrDomainNotRegistered = errors.New("upstream: domain not registered")

// RDAPDomain is the subset of an RDAP domain response this service reads.
type RDAPDomain struct {
	LDHName string      `json:"ldhName"`
	Status  []string    `json:"status"`
	Events  []RDAPEvent `json:"events"`
}

// RDAPEvent is a lifecycle event on a domain, e.g. "registration" or
// "expiration". Dates are RFC 3339 per RFC 9083.
type RDAPEvent struct {
	Action string    `json:"eventAction"`
	Date   time.Time `json:"eventDate"`
}

// EventDate returns the date of the first event with the given action.
func (d *RDAPDomain) EventDate(action string) (time.Time, bool) {
	for _, ev := range d.Events {
		if strings.EqualFold(ev.Action, action) {
			return ev.Date, true
		}
	}
	return time.Time{}, false
}

// RDAPClient asks an RDAP bootstrap service about domain registrations.
// The default base URL is the public rdap.org redirector, which forwards to
// the authoritative registry server.
type RDAPClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewRDAPClient builds a client; baseURL defaults to rdap.org.
func NewRDAPClient(baseURL string, timeout time.Duration) *RDAPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultRDAPBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &RDAPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Domain fetches the RDAP record for a domain. A 404 answer is returned as
// ErrDomainNotRegistered, which callers treat as "available".
func (r *RDAPClient) Domain(ctx context.Context, domain string) (*RDAPDomain, error) {
	endpoint := r.baseURL + "/domain/" + url.PathEscape(strings.ToLower(domain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("rdap request: %w", err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rdap query: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrDomainNotRegistered
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("rdap query: registry rate limited the proxy")
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("rdap query: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("rdap response: %w", err)
	}

	var record RDAPDomain
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("rdap response: %w", err)
	}

	return &record, nil
}
