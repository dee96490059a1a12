// Package extract pulls registration metadata out of raw WHOIS response
// text. Registries do not share a response format, so extraction is a
// best-effort scan over known label spellings rather than a grammar.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// Unknown is the value reported for a field when no label matched.
	Unknown = "Unknown"
	// InvalidData is the value reported for every field when the input is
	// not plausible text (binary payloads, broken encodings).
	InvalidData = "Invalid data"
)

// Fields holds the metadata extracted from a raw WHOIS response. Date values
// are returned exactly as found in the source text, trimmed but never
// reformatted.
type Fields struct {
	CreationDate   string
	ExpirationDate string
	Registrar      string
}

// Label alternatives per field, ordered by priority. The first alternative
// that matches a `Label: value` line anywhere in the text wins.
var (
	creationPatterns = compileLabels(
		"Creation Date",
		"Registered on",
		"Registration Date",
		"Registration Time",
		"Created On",
		"create-date",
	)
	expirationPatterns = compileLabels(
		"Registry Expiry Date",
		"Expiration Date",
		"Expiry Date",
		"Registrar Registration Expiration Date",
		"Expiration Time",
		"paid-till",
		"valid-until",
	)
	registrarPatterns = compileLabels(
		"Registrar",
		"Sponsoring Registrar",
		"Registrar Name",
	)
)

// compileLabels builds one case-insensitive line matcher per label. The
// label is anchored at line start (indentation allowed) and must be followed
// directly by a colon, so "Registrar" does not match "Registrar URL" lines.
func compileLabels(labels ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(labels))
	for _, label := range labels {
		patterns = append(patterns, regexp.MustCompile(
			`(?mi)^[ \t]*`+regexp.QuoteMeta(label)+`[ \t]*:(.*)$`,
		))
	}
	return patterns
}

// Extract scans raw WHOIS text for creation date, expiration date and
// registrar. Fields without a matching label default to Unknown; inputs that
// are not text yield InvalidData for every field.
func Extract(raw string) Fields {
	if !plausibleText(raw) {
		return Fields{
			CreationDate:   InvalidData,
			ExpirationDate: InvalidData,
			Registrar:      InvalidData,
		}
	}

	return Fields{
		CreationDate:   firstMatch(raw, creationPatterns),
		ExpirationDate: firstMatch(raw, expirationPatterns),
		Registrar:      firstMatch(raw, registrarPatterns),
	}
}

// firstMatch returns the trimmed value of the first alternative that matches
// a line with a non-empty value, or Unknown.
func firstMatch(raw string, patterns []*regexp.Regexp) string {
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(raw, -1) {
			if value := strings.TrimSpace(match[1]); value != "" {
				return value
			}
		}
	}
	return Unknown
}

// plausibleText reports whether the payload looks like a textual WHOIS
// response. NUL bytes, invalid UTF-8 or a large share of control characters
// mark the payload as binary.
func plausibleText(raw string) bool {
	if !utf8.ValidString(raw) {
		return false
	}

	control := 0
	for _, r := range raw {
		if r == 0 {
			return false
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			control++
		}
	}

	// Tolerate stray control characters, reject payloads dominated by them.
	return control*10 <= len(raw)
}
