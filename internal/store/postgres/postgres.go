// Package postgres applies change-sets with multi-row INSERT ... ON CONFLICT
// statements, one transaction per company.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cbso/internal/countries"
	"cbso/internal/ingest"
	"cbso/internal/plan"
	id "cbso/pkg/domain"
	dErrors "cbso/pkg/domain-errors"
)

// Store is the PostgreSQL-backed persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool. The caller owns the pool lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Apply executes the change-set inside one transaction so a failure never
// leaves the company half-updated. Units are queued as one batched statement
// each, in change-set order.
func (s *Store) Apply(ctx context.Context, cs *plan.ChangeSet) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin apply %s: %w", cs.EnterpriseID, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	queued := 0
	for _, unit := range cs.Units {
		if unit.Count == 0 {
			continue
		}
		sql, args, err := upsertStatement(unit)
		if err != nil {
			return err
		}
		batch.Queue(sql, args...)
		queued++
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("apply %s: %w", cs.EnterpriseID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("apply %s: %w", cs.EnterpriseID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit apply %s: %w", cs.EnterpriseID, err)
	}
	return nil
}

// CountryCodes loads the localized-name lookup table.
func (s *Store) CountryCodes(ctx context.Context) (countries.Lookup, error) {
	rows, err := s.pool.Query(ctx, `SELECT country_name, country_code FROM country_codes`)
	if err != nil {
		return countries.Lookup{}, fmt.Errorf("load country codes: %w", err)
	}
	defer rows.Close()

	pairs := map[string]string{}
	for rows.Next() {
		var name, code string
		if err := rows.Scan(&name, &code); err != nil {
			return countries.Lookup{}, fmt.Errorf("scan country code: %w", err)
		}
		pairs[name] = code
	}
	if err := rows.Err(); err != nil {
		return countries.Lookup{}, fmt.Errorf("load country codes: %w", err)
	}
	return countries.New(pairs), nil
}

// SeedCountryCodes fills the lookup table, keeping existing names.
func (s *Store) SeedCountryCodes(ctx context.Context, pairs map[string]string) error {
	batch := &pgx.Batch{}
	for name, code := range pairs {
		batch.Queue(`INSERT INTO country_codes (country_name, country_code) VALUES ($1, $2) ON CONFLICT (country_name) DO NOTHING`, name, code)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed country codes: %w", err)
	}
	return nil
}

func upsertStatement(unit plan.Unit) (string, []any, error) {
	var cols []string
	var args []any

	switch rows := unit.Rows.(type) {
	case []ingest.CompanyInfoRow:
		cols = []string{"enterprise_id", "denomination", "legal_situation"}
		for _, r := range rows {
			args = append(args, r.EnterpriseID, r.Denomination, r.LegalSituation)
		}
	case []ingest.StatementRow:
		cols = []string{"enterprise_id", "start_date", "end_date", "filing_id", "account_year", "deposit_date", "deposit_type", "legal_form", "activity_code", "model_type", "last_update"}
		for _, r := range rows {
			args = append(args, r.EnterpriseID, r.StartDate, r.EndDate, r.FilingID, r.AccountYear, r.DepositDate, r.DepositType, r.LegalForm, r.ActivityCode, r.ModelType, r.LastUpdate)
		}
	case []ingest.PersonRow:
		cols = []string{"identifier", "first_name", "last_name", "street", "street_number", "zipcode", "country_code"}
		for _, r := range rows {
			args = append(args, r.PersonID.String(), r.FirstName, r.LastName, r.Street, r.StreetNumber, r.Zipcode, r.CountryCode)
		}
	case []ingest.EntityRow:
		cols = []string{"identifier", "entity_number", "country_code", "denomination", "street", "street_number", "zipcode"}
		for _, r := range rows {
			args = append(args, r.Identifier.String(), r.EntityNumber, r.CountryCode, r.Denomination, r.Street, r.StreetNumber, r.Zipcode)
		}
	case []ingest.AdminNaturalRow:
		cols = []string{"enterprise_id", "person_id", "function_code", "start_date", "end_date", "account_year"}
		for _, r := range rows {
			args = append(args, r.EnterpriseID, r.PersonID.String(), r.FunctionCode, r.StartDate, r.EndDate, r.AccountYear)
		}
	case []ingest.AdminLegalRow:
		cols = []string{"enterprise_id", "entity_id", "person_id", "function_code", "start_date", "end_date", "account_year"}
		for _, r := range rows {
			args = append(args, r.EnterpriseID, r.EntityID.String(), r.PersonID.String(), r.FunctionCode, r.StartDate, r.EndDate, r.AccountYear)
		}
	case []ingest.ParticipationRow:
		cols = []string{"enterprise_id", "entity_id", "account_year", "account_date", "currency", "equity", "net_result", "nature", "line", "amount", "percentage_held", "percentage_subsidiary"}
		for _, r := range rows {
			args = append(args, r.EnterpriseID, r.EntityID.String(), r.AccountYear, r.AccountDate, r.Currency, r.Equity, r.NetResult, r.Nature, r.Line, r.Amount, r.PercentageHeld, r.PercentageSubsidiary)
		}
	case []ingest.ShareholdingRow:
		cols = []string{"enterprise_id", "entity_id", "person_id", "account_year", "nature_rights", "line_rights", "securities_attached", "not_securities_attached", "percentage"}
		for _, r := range rows {
			args = append(args, r.EnterpriseID, entityUUID(r.EntityID), personUUID(r.PersonID), r.AccountYear, r.NatureRights, r.LineRights, r.SecuritiesAttached, r.NotSecuritiesAttached, r.Percentage)
		}
	case []ingest.AccountingCodeRow:
		cols = []string{"accounting_code", "denomination"}
		for _, r := range rows {
			args = append(args, r.AccountingCode, r.Denomination)
		}
	case []ingest.FactRow:
		cols = []string{"account_year", "filing_id", "accounting_code", "book_value"}
		for _, r := range rows {
			args = append(args, r.AccountYear, r.FilingID, r.AccountingCode, r.BookValue)
		}
	default:
		return "", nil, dErrors.Newf(dErrors.CodeInternal, "unhandled change-set unit %s", unit.Table)
	}

	return buildUpsert(string(unit.Table), cols, unit.Count, unit.Key, unit.Conflict), args, nil
}

// buildUpsert renders a multi-row INSERT with the unit's conflict policy.
func buildUpsert(table string, cols []string, rowCount int, key []string, conflict plan.Conflict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))

	n := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range cols {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}

	fmt.Fprintf(&b, " ON CONFLICT (%s)", strings.Join(key, ", "))
	if conflict.Action == plan.ActionOverwrite {
		b.WriteString(" DO UPDATE SET ")
		for i, col := range conflict.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s = EXCLUDED.%s", col, col)
		}
	} else {
		b.WriteString(" DO NOTHING")
	}
	return b.String()
}

func entityUUID(p *id.EntityID) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func personUUID(p *id.PersonID) any {
	if p == nil {
		return nil
	}
	return p.String()
}
