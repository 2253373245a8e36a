package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(first, last, street, number string) PersonKey {
	return PersonKey{
		Normalize(first, false),
		Normalize(last, false),
		Normalize(street, false),
		Normalize(number, false),
	}
}

func TestFuzzyIndex_Find(t *testing.T) {
	t.Run("one-letter name edit matches", func(t *testing.T) {
		idx := NewFuzzyIndex(nil)
		existing := key("Jan", "Peeters", "Kerkstraat", "12")
		idx.Insert(existing)

		got, ok := idx.Find(key("Jan", "Peters", "Kerkstraat", "12"))
		require.True(t, ok)
		assert.Equal(t, existing, got)
	})

	t.Run("different person does not match", func(t *testing.T) {
		idx := NewFuzzyIndex(nil)
		idx.Insert(key("Jan", "Peeters", "Kerkstraat", "12"))

		_, ok := idx.Find(key("Karel", "Janssens", "Kerkstraat", "12"))
		assert.False(t, ok)
	})

	t.Run("a single failing field disqualifies the candidate", func(t *testing.T) {
		idx := NewFuzzyIndex(nil)
		idx.Insert(key("Jan", "Peeters", "Kerkstraat", "12"))

		// Name identical, street completely different.
		_, ok := idx.Find(key("Jan", "Peeters", "Stationsplein", "12"))
		assert.False(t, ok)
	})

	t.Run("first inserted match wins over a later exact match", func(t *testing.T) {
		idx := NewFuzzyIndex(nil)
		near := key("Jan", "Peters", "Kerkstraat", "12")
		exact := key("Jan", "Peeters", "Kerkstraat", "12")
		idx.Insert(near)
		idx.Insert(exact)

		got, ok := idx.Find(exact)
		require.True(t, ok)
		// Insertion order decides, not aggregate score.
		assert.Equal(t, near, got)
	})

	t.Run("short fields use the stricter cutoff", func(t *testing.T) {
		idx := NewFuzzyIndex(nil)
		idx.Insert(key("Jo", "Maes", "Dorp", "1"))

		// "jo" vs "bo": similarity 50, far below 80.
		_, ok := idx.Find(key("Bo", "Maes", "Dorp", "1"))
		assert.False(t, ok)
	})

	t.Run("empty index never matches", func(t *testing.T) {
		idx := NewFuzzyIndex(nil)
		_, ok := idx.Find(key("Jan", "Peeters", "Kerkstraat", "12"))
		assert.False(t, ok)
	})
}

func TestDefaultSimilarity(t *testing.T) {
	sim := DefaultSimilarity()

	assert.Equal(t, 100, sim("peeters", "peeters"))
	assert.Equal(t, 100, sim("", ""))
	assert.Less(t, sim("peeters", "janssens"), 80)
	// One edit in a seven-letter token stays above the long-field cutoff.
	assert.GreaterOrEqual(t, sim("peeters", "peters"), 90)
}
