// Package store defines the persistence boundary of the ingestion pipeline.
package store

import (
	"context"

	"cbso/internal/countries"
	"cbso/internal/plan"
)

// Store applies one company's change-set and serves the run-level country
// lookup. Apply is all-or-nothing: a failure must leave the company's
// previous state intact.
type Store interface {
	Apply(ctx context.Context, cs *plan.ChangeSet) error
	CountryCodes(ctx context.Context) (countries.Lookup, error)
}
