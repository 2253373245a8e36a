// Package identity resolves observed natural persons and legal entities to
// durable surrogate identifiers within one company's ingestion run.
//
// Persons carry no registry number, so repeat appearances are recognized by
// fuzzy comparison of normalized name and address fields. Entities carry a
// reliable registry number and match exactly on (number, country).
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns a comparison-safe token: lower-cased, accents stripped
// ("Müller" and "Muller" normalize identically), "ß" mapped to "ss", and
// everything outside [a-z] removed ([0-9] kept when keepDigits is set).
//
// Deterministic and idempotent. Empty or absent input normalizes to the
// empty token; callers must treat an empty token as "unknown", not as a
// match against other empty tokens.
func Normalize(s string, keepDigits bool) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ß", "ss")
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case keepDigits && r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}
