package identity

import (
	"github.com/adrg/strutil/metrics"
)

// Similarity scores two normalized tokens on a 0-100 scale.
// Implementations must be deterministic and symmetric.
type Similarity func(a, b string) int

// DefaultSimilarity returns the standard matching primitive: an
// insert/delete edit ratio over the combined token length (substitutions
// count as one delete plus one insert). Two equal tokens, including two
// empty ones, score 100.
//
// A one-letter edit in a seven-letter surname scores 92, clearing the
// long-field cutoff of 90; the same edit under a plain Levenshtein/max-length
// ratio would score 86 and miss.
func DefaultSimilarity() Similarity {
	lev := metrics.NewLevenshtein()
	lev.ReplaceCost = 2
	return func(a, b string) int {
		total := len(a) + len(b)
		if total == 0 {
			return 100
		}
		d := lev.Distance(a, b)
		return int((1-float64(d)/float64(total))*100 + 0.5)
	}
}
