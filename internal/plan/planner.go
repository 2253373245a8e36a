// Package plan collapses one company's accumulated rows into an ordered,
// idempotent change-set a store can apply atomically.
package plan

import (
	"fmt"
	"time"

	"cbso/internal/ingest"
	dErrors "cbso/pkg/domain-errors"
)

// Table names one output table of the change-set.
type Table string

const (
	TableCompanyInfo     Table = "company_info"
	TableStatements      Table = "statements"
	TableNaturalPersons  Table = "natural_persons"
	TableEntities        Table = "entities"
	TableAdminNatural    Table = "administrators_natural"
	TableAdminLegal      Table = "administrators_legal"
	TableParticipations  Table = "participations"
	TableShareholdings   Table = "shareholdings"
	TableAccountingCodes Table = "accounting_codes"
	TableFacts           Table = "facts"
)

// Action is what the store does when a row's natural key already exists.
type Action string

const (
	// ActionNothing keeps the existing row untouched.
	ActionNothing Action = "do_nothing"
	// ActionOverwrite updates the declared columns from the incoming row.
	ActionOverwrite Action = "overwrite"
)

// Conflict is the declared upsert policy of one table unit.
type Conflict struct {
	Action  Action
	Columns []string
}

// Unit is one table's batch inside a change-set: the rows, the natural-key
// columns, and the conflict policy. Rows holds the table's typed row slice
// (e.g. []ingest.StatementRow for TableStatements).
type Unit struct {
	Table    Table
	Key      []string
	Conflict Conflict
	Rows     any
	Count    int
}

// ChangeSet is one company's ordered list of table units. Unit order
// respects foreign-key dependencies and must be applied front to back,
// ideally in a single transaction.
type ChangeSet struct {
	EnterpriseID string
	Units        []Unit
}

// Empty reports whether the change-set carries no rows at all.
func (cs *ChangeSet) Empty() bool {
	for _, u := range cs.Units {
		if u.Count > 0 {
			return false
		}
	}
	return true
}

// Plan validates the accumulated rows and collapses them into ordered table
// units. Duplicate natural keys within one batch are collapsed before the
// store sees them, because a multi-row upsert must not touch the same key
// twice: the last row wins on overwrite tables, the first on do-nothing
// tables. A row missing part of its natural key aborts the whole company's
// change-set.
func Plan(enterpriseID string, rows *ingest.Rows) (*ChangeSet, error) {
	if enterpriseID == "" {
		return nil, invariant("company without an enterprise id")
	}

	cs := &ChangeSet{EnterpriseID: enterpriseID}

	companyInfo, err := planCompanyInfo(rows.CompanyInfo)
	if err != nil {
		return nil, err
	}
	cs.add(TableCompanyInfo, []string{"enterprise_id"},
		Conflict{ActionOverwrite, []string{"denomination", "legal_situation"}},
		companyInfo, len(companyInfo))

	statements, err := planStatements(rows.Statements)
	if err != nil {
		return nil, err
	}
	cs.add(TableStatements, []string{"enterprise_id", "start_date", "end_date"},
		Conflict{ActionOverwrite, []string{"filing_id", "account_year", "deposit_date", "deposit_type", "legal_form", "activity_code", "model_type", "last_update"}},
		statements, len(statements))

	persons, err := planPersons(rows.Persons)
	if err != nil {
		return nil, err
	}
	cs.add(TableNaturalPersons, []string{"first_name", "last_name", "street", "street_number"},
		Conflict{ActionOverwrite, []string{"identifier", "zipcode", "country_code"}},
		persons, len(persons))

	entities, err := planEntities(rows.Entities)
	if err != nil {
		return nil, err
	}
	cs.add(TableEntities, []string{"entity_number", "country_code"},
		Conflict{ActionOverwrite, []string{"identifier", "denomination", "street", "street_number", "zipcode"}},
		entities, len(entities))

	adminNatural, err := planAdminNatural(rows.AdminNatural)
	if err != nil {
		return nil, err
	}
	cs.add(TableAdminNatural, []string{"enterprise_id", "person_id", "function_code", "account_year"},
		Conflict{Action: ActionNothing},
		adminNatural, len(adminNatural))

	adminLegal, err := planAdminLegal(rows.AdminLegal)
	if err != nil {
		return nil, err
	}
	cs.add(TableAdminLegal, []string{"enterprise_id", "entity_id", "person_id", "function_code", "account_year"},
		Conflict{Action: ActionNothing},
		adminLegal, len(adminLegal))

	participations, err := planParticipations(rows.Participations)
	if err != nil {
		return nil, err
	}
	cs.add(TableParticipations, []string{"enterprise_id", "entity_id", "account_year", "line"},
		Conflict{ActionOverwrite, []string{"account_date", "currency", "equity", "net_result", "nature", "amount", "percentage_held", "percentage_subsidiary"}},
		participations, len(participations))

	shareholdings, err := planShareholdings(rows.Shareholdings)
	if err != nil {
		return nil, err
	}
	cs.add(TableShareholdings, []string{"enterprise_id", "entity_id", "person_id", "account_year", "line_rights"},
		Conflict{ActionOverwrite, []string{"nature_rights", "securities_attached", "not_securities_attached", "percentage"}},
		shareholdings, len(shareholdings))

	codes := planAccountingCodes(rows.AccountingCodes)
	cs.add(TableAccountingCodes, []string{"accounting_code"},
		Conflict{Action: ActionNothing},
		codes, len(codes))

	facts, err := planFacts(rows.Facts)
	if err != nil {
		return nil, err
	}
	cs.add(TableFacts, []string{"account_year", "filing_id", "accounting_code"},
		Conflict{ActionOverwrite, []string{"book_value"}},
		facts, len(facts))

	return cs, nil
}

func (cs *ChangeSet) add(table Table, key []string, conflict Conflict, rows any, count int) {
	cs.Units = append(cs.Units, Unit{Table: table, Key: key, Conflict: conflict, Rows: rows, Count: count})
}

func invariant(format string, args ...any) error {
	return dErrors.Newf(dErrors.CodeInvariantViolation, format, args...)
}

func planCompanyInfo(info *ingest.CompanyInfoRow) ([]ingest.CompanyInfoRow, error) {
	if info == nil {
		return nil, nil
	}
	if info.EnterpriseID == "" {
		return nil, invariant("company_info row without enterprise_id")
	}
	return []ingest.CompanyInfoRow{*info}, nil
}

func planStatements(rows []ingest.StatementRow) ([]ingest.StatementRow, error) {
	return collapseLast(rows, func(r ingest.StatementRow) (string, error) {
		if r.EnterpriseID == "" || r.StartDate.IsZero() || r.EndDate.IsZero() {
			return "", invariant("statement row missing enterprise_id or period bounds")
		}
		return r.EnterpriseID + "|" + r.StartDate.Format(time.RFC3339) + "|" + r.EndDate.Format(time.RFC3339), nil
	})
}

func planPersons(rows []ingest.PersonRow) ([]ingest.PersonRow, error) {
	return collapseLast(rows, func(r ingest.PersonRow) (string, error) {
		if r.PersonID.IsZero() {
			return "", invariant("person row without identifier")
		}
		return deref(r.FirstName) + "|" + deref(r.LastName) + "|" + deref(r.Street) + "|" + deref(r.StreetNumber), nil
	})
}

func planEntities(rows []ingest.EntityRow) ([]ingest.EntityRow, error) {
	return collapseLast(rows, func(r ingest.EntityRow) (string, error) {
		if r.Identifier.IsZero() || r.EntityNumber == "" || r.CountryCode == "" {
			return "", invariant("entity row missing identifier, registry number, or country code")
		}
		return r.EntityNumber + "|" + r.CountryCode, nil
	})
}

func planAdminNatural(rows []ingest.AdminNaturalRow) ([]ingest.AdminNaturalRow, error) {
	return collapseFirst(rows, func(r ingest.AdminNaturalRow) (string, error) {
		if r.EnterpriseID == "" || r.PersonID.IsZero() {
			return "", invariant("natural administrator link missing enterprise or person id")
		}
		return fmt.Sprintf("%s|%s|%s|%d", r.EnterpriseID, r.PersonID, deref(r.FunctionCode), r.AccountYear), nil
	})
}

func planAdminLegal(rows []ingest.AdminLegalRow) ([]ingest.AdminLegalRow, error) {
	return collapseFirst(rows, func(r ingest.AdminLegalRow) (string, error) {
		if r.EnterpriseID == "" || r.EntityID.IsZero() || r.PersonID.IsZero() {
			return "", invariant("legal administrator link missing enterprise, entity, or person id")
		}
		return fmt.Sprintf("%s|%s|%s|%s|%d", r.EnterpriseID, r.EntityID, r.PersonID, deref(r.FunctionCode), r.AccountYear), nil
	})
}

func planParticipations(rows []ingest.ParticipationRow) ([]ingest.ParticipationRow, error) {
	return collapseLast(rows, func(r ingest.ParticipationRow) (string, error) {
		if r.EnterpriseID == "" || r.EntityID.IsZero() {
			return "", invariant("participation row missing enterprise or entity id")
		}
		return fmt.Sprintf("%s|%s|%d|%s", r.EnterpriseID, r.EntityID, r.AccountYear, deref(r.Line)), nil
	})
}

func planShareholdings(rows []ingest.ShareholdingRow) ([]ingest.ShareholdingRow, error) {
	return collapseLast(rows, func(r ingest.ShareholdingRow) (string, error) {
		if r.EnterpriseID == "" {
			return "", invariant("shareholding row without enterprise id")
		}
		if (r.EntityID == nil) == (r.PersonID == nil) {
			return "", invariant("shareholding row must reference exactly one of entity or person")
		}
		var holder string
		if r.EntityID != nil {
			holder = "e:" + r.EntityID.String()
		} else {
			holder = "p:" + r.PersonID.String()
		}
		return fmt.Sprintf("%s|%s|%d|%s", r.EnterpriseID, holder, r.AccountYear, deref(r.LineRights)), nil
	})
}

func planAccountingCodes(rows []ingest.AccountingCodeRow) []ingest.AccountingCodeRow {
	out, _ := collapseFirst(rows, func(r ingest.AccountingCodeRow) (string, error) {
		return r.AccountingCode, nil
	})
	return out
}

func planFacts(rows []ingest.FactRow) ([]ingest.FactRow, error) {
	return collapseLast(rows, func(r ingest.FactRow) (string, error) {
		if r.FilingID == "" || r.AccountingCode == "" {
			return "", invariant("fact row missing filing id or accounting code")
		}
		return fmt.Sprintf("%d|%s|%s", r.AccountYear, r.FilingID, r.AccountingCode), nil
	})
}

// collapseLast keeps the last row per key, preserving first-seen order.
func collapseLast[T any](rows []T, keyOf func(T) (string, error)) ([]T, error) {
	order := make([]string, 0, len(rows))
	byKey := make(map[string]T, len(rows))
	for _, r := range rows {
		key, err := keyOf(r)
		if err != nil {
			return nil, err
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = r
	}
	out := make([]T, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out, nil
}

// collapseFirst keeps the first row per key.
func collapseFirst[T any](rows []T, keyOf func(T) (string, error)) ([]T, error) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		key, err := keyOf(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
