package services

import (
	"strings"

	apperrors "github.com/domainlens/whoisproxy/pkg/errors"
)

const maxDomainLength = 253

// NormalizeDomain lowercases and trims a domain so equivalent spellings share
// one cache key.
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// ValidateDomain enforces the conservative allow-list applied before a domain
// may reach the system whois command: letters, digits, dot and hyphen only,
// bounded length. Anything else fails fast so shell-hostile input never
// becomes a process argument.
func ValidateDomain(domain string) error {
	if domain == "" || len(domain) > maxDomainLength {
		return apperrors.NewInvalidDomain(domain)
	}

	for _, r := range domain {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return apperrors.NewInvalidDomain(domain)
		}
	}

	return nil
}
