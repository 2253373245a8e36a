// Package countries provides the country-name to ISO code lookup the
// conversion layer uses for foreign addresses. The table is supplied once
// per run by the caller, typically loaded from the store's country_codes
// table.
package countries

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lookup maps a localized (Dutch) country name to its ISO 3166 alpha-2
// code. Keys are held title-cased, codes upper-cased.
type Lookup map[string]string

// New builds a lookup from raw name/code pairs.
func New(pairs map[string]string) Lookup {
	titler := cases.Title(language.Dutch)
	l := make(Lookup, len(pairs))
	for name, code := range pairs {
		l[titler.String(name)] = strings.ToUpper(code)
	}
	return l
}

// Code returns the alpha-2 code for a localized country name.
func (l Lookup) Code(name string) (string, bool) {
	// cases.Caser carries state, so build one per call; the lookup itself
	// is shared read-only across company workers.
	code, ok := l[cases.Title(language.Dutch).String(name)]
	return code, ok
}
