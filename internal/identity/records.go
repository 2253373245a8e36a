package identity

// Person is one observed natural-person record. The four identity-bearing
// fields are optional; zipcode and country carry parse-time fallbacks and
// are always present.
type Person struct {
	FirstName    *string
	LastName     *string
	Street       *string
	StreetNumber *string
	Zipcode      string
	CountryCode  string
}

// Entity is one observed legal-entity record. Number is the digits-only
// registry number and is required; together with CountryCode it forms the
// exact natural key.
type Entity struct {
	Number       string
	CountryCode  string
	Denomination *string
	Street       *string
	StreetNumber *string
	Zipcode      string
}

// MergePerson folds a later observation into an existing record. The newer
// record's non-null attributes win; a null never overwrites a present value.
func MergePerson(existing, newer Person) Person {
	merged := newer
	if merged.FirstName == nil {
		merged.FirstName = existing.FirstName
	}
	if merged.LastName == nil {
		merged.LastName = existing.LastName
	}
	if merged.Street == nil {
		merged.Street = existing.Street
	}
	if merged.StreetNumber == nil {
		merged.StreetNumber = existing.StreetNumber
	}
	if merged.Zipcode == "" {
		merged.Zipcode = existing.Zipcode
	}
	if merged.CountryCode == "" {
		merged.CountryCode = existing.CountryCode
	}
	return merged
}

// MergeEntity folds a later entity observation into an existing record under
// the same rule as MergePerson. Number and CountryCode are key fields and
// identical by construction.
func MergeEntity(existing, newer Entity) Entity {
	merged := newer
	if merged.Denomination == nil {
		merged.Denomination = existing.Denomination
	}
	if merged.Street == nil {
		merged.Street = existing.Street
	}
	if merged.StreetNumber == nil {
		merged.StreetNumber = existing.StreetNumber
	}
	if merged.Zipcode == "" {
		merged.Zipcode = existing.Zipcode
	}
	return merged
}
