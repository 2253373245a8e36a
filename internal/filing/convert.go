package filing

import (
	"strings"

	"cbso/internal/countries"
	"cbso/internal/identity"
	dErrors "cbso/pkg/domain-errors"
)

// ToPerson converts a disclosed person record into a resolvable identity
// record. Name and street are lower-cased here because they feed the
// natural key of the persons table; zipcode falls back to "0000" and the
// country code to "XX" when the address carries neither a coded value nor a
// resolvable country name.
func ToPerson(rec PersonRecord, lookup countries.Lookup) identity.Person {
	return identity.Person{
		FirstName:    lowered(rec.FirstName),
		LastName:     lowered(rec.LastName),
		Street:       lowered(rec.Address.Street),
		StreetNumber: rec.Address.Number,
		Zipcode:      zipcodeOf(rec.Address),
		CountryCode:  countryOf(rec.Address, lookup),
	}
}

// ToEntity converts a disclosed entity record. The registry number is
// required; a record without one cannot be keyed and is malformed.
func ToEntity(rec EntityRecord, lookup countries.Lookup) (identity.Entity, error) {
	if rec.Identifier == nil || DigitsOnly(*rec.Identifier) == "" {
		return identity.Entity{}, dErrors.New(dErrors.CodeMalformedRecord, "entity registry number is required")
	}
	return identity.Entity{
		Number:       DigitsOnly(*rec.Identifier),
		CountryCode:  countryOf(rec.Address, lookup),
		Denomination: rec.Name,
		Street:       lowered(rec.Address.Street),
		StreetNumber: rec.Address.Number,
		Zipcode:      zipcodeOf(rec.Address),
	}, nil
}

func zipcodeOf(a Address) string {
	if a.City != nil && *a.City != "" {
		return StripPostal(*a.City)
	}
	if a.OtherPostalCode != nil && *a.OtherPostalCode != "" {
		return *a.OtherPostalCode
	}
	return "0000"
}

func countryOf(a Address, lookup countries.Lookup) string {
	if a.Country != nil && *a.Country != "" {
		return StripCountry(*a.Country)
	}
	if a.OtherCountry != nil {
		if code, ok := lookup.Code(*a.OtherCountry); ok {
			return code
		}
	}
	return "XX"
}

func lowered(s *string) *string {
	if s == nil {
		return nil
	}
	l := strings.ToLower(*s)
	return &l
}
