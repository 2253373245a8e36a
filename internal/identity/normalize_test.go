package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases and strips punctuation", func(t *testing.T) {
		assert.Equal(t, "vandenberghe", Normalize("Van den Berghe!", false))
	})

	t.Run("accented and plain forms normalize identically", func(t *testing.T) {
		assert.Equal(t, Normalize("Muller", false), Normalize("Müller", false))
		assert.Equal(t, "francois", Normalize("François", false))
		assert.Equal(t, "elodie", Normalize("Élodie", false))
	})

	t.Run("maps sharp s to ss", func(t *testing.T) {
		assert.Equal(t, "strasse", Normalize("Straße", false))
	})

	t.Run("digits stripped unless kept", func(t *testing.T) {
		assert.Equal(t, "a", Normalize("12A", false))
		assert.Equal(t, "12a", Normalize("12A", true))
	})

	t.Run("empty and absent input normalize to empty token", func(t *testing.T) {
		assert.Equal(t, "", Normalize("", false))
		assert.Equal(t, "", Normalize(" .-", false))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, s := range []string{"Müller", "Straße 12", "JAN-baptist", "", "émile zola"} {
			once := Normalize(s, false)
			assert.Equal(t, once, Normalize(once, false), "normalize(normalize(%q))", s)
		}
	})
}

func TestBuildPersonKey(t *testing.T) {
	first, last := "Jan", "Peeters"
	street, number := "Kerkstraat", "12"

	t.Run("derives the 4-tuple in field order", func(t *testing.T) {
		key := BuildPersonKey(Person{
			FirstName: &first, LastName: &last, Street: &street, StreetNumber: &number,
		})
		assert.Equal(t, PersonKey{"jan", "peeters", "kerkstraat", ""}, key)
	})

	t.Run("absent fields normalize to empty string", func(t *testing.T) {
		key := BuildPersonKey(Person{LastName: &last})
		assert.Equal(t, PersonKey{"", "peeters", "", ""}, key)
		assert.False(t, key.IsEmpty())
	})

	t.Run("fully absent record yields the empty key", func(t *testing.T) {
		assert.True(t, BuildPersonKey(Person{}).IsEmpty())
	})
}
