package identity

// FuzzyIndex holds the comparison keys already bound to an identity within
// one company's run and answers whether a new key fuzzy-matches one of them.
//
// Scope is a single company's filings, so the linear scan per lookup is
// acceptable. The index is owned by one single-threaded accumulation pass;
// no locking.
type FuzzyIndex struct {
	sim  Similarity
	keys []PersonKey
}

// NewFuzzyIndex builds an empty index around the given similarity primitive.
// A nil primitive falls back to DefaultSimilarity.
func NewFuzzyIndex(sim Similarity) *FuzzyIndex {
	if sim == nil {
		sim = DefaultSimilarity()
	}
	return &FuzzyIndex{sim: sim}
}

// thresholdFor picks the per-field cutoff. Edit-distance ratios are noisier
// on short tokens, so short query fields need a stricter bar.
func thresholdFor(field string) int {
	if len(field) > 4 {
		return 90
	}
	return 80
}

// Find scans existing keys in insertion order and returns the first one
// where every positional field pair clears its threshold. A single failing
// field disqualifies the candidate and the scan moves on. Candidates are
// not ranked by score; the first passing key wins, which keeps matching
// deterministic for a fixed insertion order.
func (x *FuzzyIndex) Find(key PersonKey) (PersonKey, bool) {
candidates:
	for _, existing := range x.keys {
		for i := range key {
			if x.sim(key[i], existing[i]) < thresholdFor(key[i]) {
				continue candidates
			}
		}
		return existing, true
	}
	return PersonKey{}, false
}

// Insert adds a key to the index. Callers must not insert all-empty keys.
func (x *FuzzyIndex) Insert(key PersonKey) {
	x.keys = append(x.keys, key)
}

// Seed preloads keys bound by an earlier run so cross-run reconciliation can
// reuse identities. The pipeline itself runs with an empty index; seeding is
// the extension point for durable identity.
func (x *FuzzyIndex) Seed(keys []PersonKey) {
	x.keys = append(x.keys, keys...)
}

// Len returns the number of indexed keys.
func (x *FuzzyIndex) Len() int { return len(x.keys) }
