package identity

// PersonKey is the ordered tuple of normalized identity fields used for
// fuzzy person lookup: first name, last name, street, street number.
// Absent fields normalize to the empty string.
type PersonKey [4]string

// IsEmpty reports whether every positional field is empty. All-empty keys
// fuzzy-match far too liberally, so callers never insert them into the
// index and always mint a fresh identity instead.
func (k PersonKey) IsEmpty() bool {
	return k[0] == "" && k[1] == "" && k[2] == "" && k[3] == ""
}

// BuildPersonKey derives the comparison key for a person record.
func BuildPersonKey(p Person) PersonKey {
	return PersonKey{
		Normalize(deref(p.FirstName), false),
		Normalize(deref(p.LastName), false),
		Normalize(deref(p.Street), false),
		Normalize(deref(p.StreetNumber), false),
	}
}

// EntityKey is the exact natural key for legal entities. Entities carry a
// reliable registry number, so no fuzzy matching applies.
type EntityKey struct {
	Number      string
	CountryCode string
}

// BuildEntityKey derives the exact key for an entity record.
func BuildEntityKey(e Entity) EntityKey {
	return EntityKey{Number: e.Number, CountryCode: e.CountryCode}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
