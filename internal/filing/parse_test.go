package filing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbso/internal/countries"
	dErrors "cbso/pkg/domain-errors"
)

const referencesPayload = `[
  {
    "EnterpriseNumber": "0400.638.803",
    "EnterpriseName": "Old Name NV",
    "LegalSituation": "Normal",
    "ExerciseDates": {"startDate": "2021-01-01", "endDate": "2021-12-31"},
    "ReferenceNumber": "2022-00112233",
    "DepositDate": "2022-06-30",
    "DepositType": "Initial",
    "LegalForm": "014",
    "ActivityCode": "70100",
    "ModelType": "F-cap"
  },
  {
    "EnterpriseNumber": "0400.638.803",
    "EnterpriseName": "New Name NV",
    "LegalSituation": "Normal",
    "ExerciseDates": {"startDate": "2022-01-01", "endDate": "2022-12-31"},
    "ReferenceNumber": "2023-00445566",
    "DepositDate": "2023-06-28",
    "DepositType": "Correction",
    "LegalForm": "014",
    "ModelType": "F-cap"
  }
]`

func TestParseReferences(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("derives company attributes from the newest element", func(t *testing.T) {
		refs, err := ParseReferences([]byte(referencesPayload), now)
		require.NoError(t, err)

		assert.Equal(t, "0400638803", refs.EnterpriseID)
		require.NotNil(t, refs.EnterpriseName)
		assert.Equal(t, "New Name NV", *refs.EnterpriseName)
	})

	t.Run("account year is end-date year plus one", func(t *testing.T) {
		refs, err := ParseReferences([]byte(referencesPayload), now)
		require.NoError(t, err)

		require.Len(t, refs.Summaries, 2)
		assert.Equal(t, 2022, refs.Summaries[0].AccountYear)
		assert.Equal(t, 2023, refs.Summaries[1].AccountYear)
		assert.Equal(t, now, refs.Summaries[0].LastUpdate)
	})

	t.Run("splits initial deposits from corrections", func(t *testing.T) {
		refs, err := ParseReferences([]byte(referencesPayload), now)
		require.NoError(t, err)

		require.Len(t, refs.Initial, 1)
		require.Len(t, refs.Corrections, 1)
		assert.Equal(t, "2022-00112233", refs.Initial[0].FilingID)
		assert.Equal(t, "2023-00445566", refs.Corrections[0].FilingID)
	})

	t.Run("malformed date is fatal for the list", func(t *testing.T) {
		bad := `[{"EnterpriseNumber": "0400638803", "ExerciseDates": {"startDate": "not-a-date", "endDate": "2021-12-31"}, "ReferenceNumber": "r", "DepositType": "Initial", "LegalForm": "014", "ModelType": "F-cap"}]`
		_, err := ParseReferences([]byte(bad), now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	t.Run("empty payload is malformed", func(t *testing.T) {
		_, err := ParseReferences([]byte(`[]`), now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})
}

func TestParseFiling(t *testing.T) {
	payload := `{
	  "ReferenceNumber": "2023-00445566",
	  "EnterpriseName": "New Name NV",
	  "Administrators": {
	    "NaturalPersons": [
	      {
	        "Person": {"FirstName": "Jan", "LastName": "Peeters", "Address": {"Street": "Kerkstraat", "Number": "12", "City": "pcd:m2000", "Country": "cty:mBE"}},
	        "Mandates": [{"FunctionMandate": "fct:m10061", "MandateDates": {"StartDate": "2020-05-01"}}]
	      }
	    ],
	    "LegalPersons": []
	  },
	  "ParticipatingInterests": [
	    {
	      "Entity": {"Identifier": "0200.065.765", "Name": "Sub NV", "Address": {"Country": "cty:mBE"}},
	      "AccountDate": "2022-12-31",
	      "Currency": "ccy:mEUR",
	      "Equity": "125000",
	      "NetResult": -3000,
	      "ParticipatingInterestHeld": [{"Nature": "shares", "Line": "1", "Number": "500", "PercentageDirectlyHeld": 75.5}]
	    }
	  ],
	  "Rubrics": [
	    {"Period": "N", "Code": "10/15", "Value": 1000.5},
	    {"Period": "NM1", "Code": "10/15", "Value": 900}
	  ]
	}`

	f, err := ParseFiling([]byte(payload))
	require.NoError(t, err)

	require.Len(t, f.Administrators.NaturalPersons, 1)
	admin := f.Administrators.NaturalPersons[0]
	assert.Equal(t, "Jan", *admin.Person.FirstName)
	require.Len(t, admin.Mandates, 1)

	require.Len(t, f.ParticipatingInterests, 1)
	pi := f.ParticipatingInterests[0]
	// Monetary fields decode from both numeric strings and numbers.
	require.NotNil(t, pi.Equity)
	assert.Equal(t, Number(125000), *pi.Equity)
	require.NotNil(t, pi.NetResult)
	assert.Equal(t, Number(-3000), *pi.NetResult)

	require.Len(t, f.Rubrics, 2)
	assert.Equal(t, "N", f.Rubrics[0].Period)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "0400638803", DigitsOnly("BE 0400.638.803"))
	assert.Equal(t, "", DigitsOnly("no digits"))
}

func TestConvert(t *testing.T) {
	lookup := countries.New(map[string]string{"duitsland": "de"})

	t.Run("person gets coded zipcode and country", func(t *testing.T) {
		street, number := "Kerkstraat", "12"
		city, country := "pcd:m2000", "cty:mBE"
		first := "Jan"
		p := ToPerson(PersonRecord{
			FirstName: &first,
			Address:   Address{Street: &street, Number: &number, City: &city, Country: &country},
		}, lookup)

		assert.Equal(t, "jan", *p.FirstName)
		assert.Equal(t, "kerkstraat", *p.Street)
		assert.Equal(t, "2000", p.Zipcode)
		assert.Equal(t, "BE", p.CountryCode)
	})

	t.Run("address fallbacks apply", func(t *testing.T) {
		other := "Duitsland"
		p := ToPerson(PersonRecord{Address: Address{OtherCountry: &other}}, lookup)
		assert.Equal(t, "0000", p.Zipcode)
		assert.Equal(t, "DE", p.CountryCode)

		p = ToPerson(PersonRecord{}, lookup)
		assert.Equal(t, "XX", p.CountryCode)
	})

	t.Run("entity requires a registry number", func(t *testing.T) {
		_, err := ToEntity(EntityRecord{}, lookup)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedRecord))

		ident := "0200.065.765"
		e, err := ToEntity(EntityRecord{Identifier: &ident}, lookup)
		require.NoError(t, err)
		assert.Equal(t, "0200065765", e.Number)
		assert.Equal(t, "XX", e.CountryCode)
	})
}
