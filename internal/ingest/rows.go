// Package ingest accumulates one company's parsed filings into normalized
// output rows, resolving every observed person and entity to a durable
// identifier along the way.
package ingest

import (
	"time"

	id "cbso/pkg/domain"
)

// CompanyInfoRow is the single company_info row per company.
type CompanyInfoRow struct {
	EnterpriseID   string
	Denomination   *string
	LegalSituation *string
}

// StatementRow is one filed accounting period.
// Natural key: (enterprise_id, start_date, end_date).
type StatementRow struct {
	EnterpriseID string
	StartDate    time.Time
	EndDate      time.Time
	FilingID     string
	AccountYear  int
	DepositDate  *time.Time
	DepositType  string
	LegalForm    string
	ActivityCode *string
	ModelType    string
	LastUpdate   time.Time
}

// PersonRow is one resolved natural person.
// Natural key: (first_name, last_name, street, street_number).
type PersonRow struct {
	PersonID     id.PersonID
	FirstName    *string
	LastName     *string
	Street       *string
	StreetNumber *string
	Zipcode      string
	CountryCode  string
}

// EntityRow is one resolved legal entity. EntityNumber is the digits-only
// registry number; natural key: (entity_number, country_code).
type EntityRow struct {
	Identifier   id.EntityID
	EntityNumber string
	CountryCode  string
	Denomination *string
	Street       *string
	StreetNumber *string
	Zipcode      string
}

// AdminNaturalRow links a natural-person administrator to the company for
// one account year. A row with nil function and dates is a bare link.
type AdminNaturalRow struct {
	EnterpriseID string
	PersonID     id.PersonID
	FunctionCode *string
	StartDate    *time.Time
	EndDate      *time.Time
	AccountYear  int
}

// AdminLegalRow links a legal-entity administrator, through one of its
// natural-person representatives, to the company for one account year.
type AdminLegalRow struct {
	EnterpriseID string
	EntityID     id.EntityID
	PersonID     id.PersonID
	FunctionCode *string
	StartDate    *time.Time
	EndDate      *time.Time
	AccountYear  int
}

// ParticipationRow is one line of a participating interest held by the
// company in another entity.
type ParticipationRow struct {
	EnterpriseID         string
	EntityID             id.EntityID
	AccountYear          int
	AccountDate          *time.Time
	Currency             string
	Equity               int64
	NetResult            int64
	Nature               *string
	Line                 *string
	Amount               *string
	PercentageHeld       *float64
	PercentageSubsidiary *float64
}

// ShareholdingRow is one line of rights held in the company by an entity or
// an individual shareholder; exactly one of EntityID/PersonID is set.
type ShareholdingRow struct {
	EnterpriseID          string
	EntityID              *id.EntityID
	PersonID              *id.PersonID
	AccountYear           int
	NatureRights          *string
	LineRights            *string
	SecuritiesAttached    *float64
	NotSecuritiesAttached *string
	Percentage            *float64
}

// AccountingCodeRow registers one rubric code.
type AccountingCodeRow struct {
	AccountingCode string
	Denomination   string
}

// FactRow is one (account_year, filing_id, accounting_code) observation.
type FactRow struct {
	AccountYear    int
	FilingID       string
	AccountingCode string
	BookValue      *float64
}

// Rows is the complete accumulated output for one company.
type Rows struct {
	CompanyInfo     *CompanyInfoRow
	Statements      []StatementRow
	Persons         []PersonRow
	Entities        []EntityRow
	AdminNatural    []AdminNaturalRow
	AdminLegal      []AdminLegalRow
	Participations  []ParticipationRow
	Shareholdings   []ShareholdingRow
	AccountingCodes []AccountingCodeRow
	Facts           []FactRow
}
