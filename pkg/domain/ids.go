// Package domain defines the typed surrogate identifiers used across the
// ingestion pipeline.
//
// Natural persons carry no registry number, so their identity is a surrogate
// UUID minted on first observation and reused on every later match. Legal
// entities also receive a surrogate UUID; their registry number is a natural
// key for matching, not the stored identifier. Distinct Go types keep a
// PersonID from ever being threaded into an entity column and vice versa.
package domain

import (
	"github.com/google/uuid"

	dErrors "cbso/pkg/domain-errors"
)

// PersonID identifies one real-world natural person.
// Invariant: assigned once per person within a run, never reassigned.
type PersonID uuid.UUID

// EntityID identifies one real-world legal entity.
type EntityID uuid.UUID

// RunID identifies one ingestion run, for log and error correlation.
type RunID uuid.UUID

// NewPersonID mints a fresh durable person identifier.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewEntityID mints a fresh durable entity identifier.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewRunID mints an identifier for one ingestion run.
func NewRunID() RunID { return RunID(uuid.New()) }

func (id PersonID) String() string { return uuid.UUID(id).String() }
func (id EntityID) String() string { return uuid.UUID(id).String() }
func (id RunID) String() string    { return uuid.UUID(id).String() }

// IsZero reports whether the identifier is the nil UUID.
func (id PersonID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// IsZero reports whether the identifier is the nil UUID.
func (id EntityID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParsePersonID constructs a PersonID from external input.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PersonID{}, err
	}
	return PersonID(u), nil
}

// ParseEntityID constructs an EntityID from external input.
func ParseEntityID(s string) (EntityID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EntityID{}, err
	}
	return EntityID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "identifier is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "identifier is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "identifier must not be the nil UUID")
	}
	return u, nil
}
