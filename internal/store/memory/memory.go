// Package memory is the in-memory Store used by unit tests and local runs.
// Upsert semantics mirror the postgres implementation: overwrite units
// replace the stored row for an existing natural key, do-nothing units keep
// the first row.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cbso/internal/countries"
	"cbso/internal/ingest"
	"cbso/internal/plan"
	dErrors "cbso/pkg/domain-errors"
)

type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]T{}}
}

func (t *table[T]) upsert(key string, row T, overwrite bool) {
	if _, ok := t.rows[key]; ok {
		if overwrite {
			t.rows[key] = row
		}
		return
	}
	t.order = append(t.order, key)
	t.rows[key] = row
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.rows[key])
	}
	return out
}

// Store holds every output table in insertion-ordered maps.
type Store struct {
	mu sync.RWMutex

	countryCodes map[string]string

	companyInfo     *table[ingest.CompanyInfoRow]
	statements      *table[ingest.StatementRow]
	persons         *table[ingest.PersonRow]
	entities        *table[ingest.EntityRow]
	adminNatural    *table[ingest.AdminNaturalRow]
	adminLegal      *table[ingest.AdminLegalRow]
	participations  *table[ingest.ParticipationRow]
	shareholdings   *table[ingest.ShareholdingRow]
	accountingCodes *table[ingest.AccountingCodeRow]
	facts           *table[ingest.FactRow]
}

// New builds an empty store seeded with the country lookup rows.
func New(countryCodes map[string]string) *Store {
	return &Store{
		countryCodes:    countryCodes,
		companyInfo:     newTable[ingest.CompanyInfoRow](),
		statements:      newTable[ingest.StatementRow](),
		persons:         newTable[ingest.PersonRow](),
		entities:        newTable[ingest.EntityRow](),
		adminNatural:    newTable[ingest.AdminNaturalRow](),
		adminLegal:      newTable[ingest.AdminLegalRow](),
		participations:  newTable[ingest.ParticipationRow](),
		shareholdings:   newTable[ingest.ShareholdingRow](),
		accountingCodes: newTable[ingest.AccountingCodeRow](),
		facts:           newTable[ingest.FactRow](),
	}
}

// CountryCodes returns the seeded lookup.
func (s *Store) CountryCodes(_ context.Context) (countries.Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countries.New(s.countryCodes), nil
}

// Apply folds the change-set into the in-memory tables unit by unit.
func (s *Store) Apply(_ context.Context, cs *plan.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, unit := range cs.Units {
		overwrite := unit.Conflict.Action == plan.ActionOverwrite
		switch rows := unit.Rows.(type) {
		case []ingest.CompanyInfoRow:
			for _, r := range rows {
				s.companyInfo.upsert(r.EnterpriseID, r, overwrite)
			}
		case []ingest.StatementRow:
			for _, r := range rows {
				key := r.EnterpriseID + "|" + r.StartDate.Format(time.RFC3339) + "|" + r.EndDate.Format(time.RFC3339)
				s.statements.upsert(key, r, overwrite)
			}
		case []ingest.PersonRow:
			for _, r := range rows {
				key := deref(r.FirstName) + "|" + deref(r.LastName) + "|" + deref(r.Street) + "|" + deref(r.StreetNumber)
				s.persons.upsert(key, r, overwrite)
			}
		case []ingest.EntityRow:
			for _, r := range rows {
				s.entities.upsert(r.EntityNumber+"|"+r.CountryCode, r, overwrite)
			}
		case []ingest.AdminNaturalRow:
			for _, r := range rows {
				key := fmt.Sprintf("%s|%s|%s|%d", r.EnterpriseID, r.PersonID, deref(r.FunctionCode), r.AccountYear)
				s.adminNatural.upsert(key, r, overwrite)
			}
		case []ingest.AdminLegalRow:
			for _, r := range rows {
				key := fmt.Sprintf("%s|%s|%s|%s|%d", r.EnterpriseID, r.EntityID, r.PersonID, deref(r.FunctionCode), r.AccountYear)
				s.adminLegal.upsert(key, r, overwrite)
			}
		case []ingest.ParticipationRow:
			for _, r := range rows {
				key := fmt.Sprintf("%s|%s|%d|%s", r.EnterpriseID, r.EntityID, r.AccountYear, deref(r.Line))
				s.participations.upsert(key, r, overwrite)
			}
		case []ingest.ShareholdingRow:
			for _, r := range rows {
				holder := ""
				if r.EntityID != nil {
					holder = "e:" + r.EntityID.String()
				} else if r.PersonID != nil {
					holder = "p:" + r.PersonID.String()
				}
				key := fmt.Sprintf("%s|%s|%d|%s", r.EnterpriseID, holder, r.AccountYear, deref(r.LineRights))
				s.shareholdings.upsert(key, r, overwrite)
			}
		case []ingest.AccountingCodeRow:
			for _, r := range rows {
				s.accountingCodes.upsert(r.AccountingCode, r, overwrite)
			}
		case []ingest.FactRow:
			for _, r := range rows {
				key := fmt.Sprintf("%d|%s|%s", r.AccountYear, r.FilingID, r.AccountingCode)
				s.facts.upsert(key, r, overwrite)
			}
		default:
			return dErrors.Newf(dErrors.CodeInternal, "unhandled change-set unit %s", unit.Table)
		}
	}
	return nil
}

// Read accessors, snapshot copies in insertion order.

func (s *Store) CompanyInfo() []ingest.CompanyInfoRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companyInfo.list()
}

func (s *Store) Statements() []ingest.StatementRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statements.list()
}

func (s *Store) Persons() []ingest.PersonRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persons.list()
}

func (s *Store) Entities() []ingest.EntityRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities.list()
}

func (s *Store) AdminNatural() []ingest.AdminNaturalRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminNatural.list()
}

func (s *Store) AdminLegal() []ingest.AdminLegalRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminLegal.list()
}

func (s *Store) Participations() []ingest.ParticipationRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.participations.list()
}

func (s *Store) Shareholdings() []ingest.ShareholdingRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shareholdings.list()
}

func (s *Store) AccountingCodes() []ingest.AccountingCodeRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountingCodes.list()
}

func (s *Store) Facts() []ingest.FactRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facts.list()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
