// Package models defines the wire-level result types served by the API.
package models

import "time"

// LookupResult is the payload served for a WHOIS lookup. Date and registrar
// fields carry the text found in the raw response, or "Unknown" when no
// recognised label matched. The struct is immutable once built: it is written
// to the cache exactly once and served unchanged until the TTL expires.
type LookupResult struct {
	Domain         string `json:"domain"`
	CreationDate   string `json:"creationDate"`
	ExpirationDate string `json:"expirationDate"`
	Registrar      string `json:"registrar"`
	RawData        string `json:"rawData"`
}

// ParsedResult is the structured view of the same raw WHOIS text, produced by
// the parser library instead of the tolerant label scan. The *ISO fields are
// RFC 3339 UTC renderings of the source dates when they parse, empty
// otherwise; the plain date fields keep the registry's own formatting.
type ParsedResult struct {
	Domain            string   `json:"domain"`
	Registrar         string   `json:"registrar"`
	CreatedDate       string   `json:"createdDate"`
	ExpirationDate    string   `json:"expirationDate"`
	UpdatedDate       string   `json:"updatedDate"`
	NameServers       []string `json:"nameServers"`
	Statuses          []string `json:"statuses"`
	CreatedDateISO    string   `json:"createdDateISO,omitempty"`
	ExpirationDateISO string   `json:"expirationDateISO,omitempty"`
	UpdatedDateISO    string   `json:"updatedDateISO,omitempty"`
}

// AvailabilityResult reports whether a domain appears registrable and which
// probe produced the verdict: "rdap", "whois" or "dns".
type AvailabilityResult struct {
	Domain    string    `json:"domain"`
	Available bool      `json:"available"`
	Method    string    `json:"method"`
	CheckedAt time.Time `json:"checkedAt"`
}
