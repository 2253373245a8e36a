package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePerson(t *testing.T) {
	existing := Person{
		FirstName:    strptr("jan"),
		LastName:     strptr("peeters"),
		Street:       strptr("kerkstraat"),
		StreetNumber: strptr("12"),
		Zipcode:      "2000",
		CountryCode:  "BE",
	}

	t.Run("null street keeps the existing non-null street", func(t *testing.T) {
		newer := Person{FirstName: strptr("jan"), LastName: strptr("peeters"), Zipcode: "2000", CountryCode: "BE"}
		merged := MergePerson(existing, newer)

		require.NotNil(t, merged.Street)
		assert.Equal(t, "kerkstraat", *merged.Street)
		assert.Equal(t, "12", *merged.StreetNumber)
	})

	t.Run("newer non-null values win", func(t *testing.T) {
		newer := Person{
			FirstName: strptr("johannes"),
			LastName:  strptr("peeters"),
			Zipcode:   "2018",
		}
		merged := MergePerson(existing, newer)

		assert.Equal(t, "johannes", *merged.FirstName)
		assert.Equal(t, "2018", merged.Zipcode)
		// Absent country falls back to the existing one.
		assert.Equal(t, "BE", merged.CountryCode)
	})
}

func TestMergeEntity(t *testing.T) {
	existing := Entity{
		Number:       "0400638803",
		CountryCode:  "BE",
		Denomination: strptr("Acme NV"),
		Street:       strptr("hoogstraat"),
		Zipcode:      "1000",
	}

	newer := Entity{Number: "0400638803", CountryCode: "BE", StreetNumber: strptr("7"), Zipcode: "1000"}
	merged := MergeEntity(existing, newer)

	assert.Equal(t, "Acme NV", *merged.Denomination)
	assert.Equal(t, "hoogstraat", *merged.Street)
	assert.Equal(t, "7", *merged.StreetNumber)
}
