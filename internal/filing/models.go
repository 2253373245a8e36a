// Package filing defines the parsed shape of CBSO disclosure documents and
// extracts them from raw JSON payloads.
//
// Every nested section is an explicit tagged record with required versus
// optional fields visible in the type, so missing-field errors surface at
// decode or conversion time instead of at arbitrary lookup points deeper in
// the pipeline.
package filing

import (
	"strconv"
	"strings"
	"time"
)

// Number accepts both JSON numbers and numeric strings, which the registry
// emits interchangeably for monetary and percentage fields.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Address is the shared address block for persons and entities. City and
// Country carry registry-scheme prefixes ("pcd:m", "cty:m") that conversion
// strips; the Other* variants are free-text fallbacks for foreign addresses.
type Address struct {
	Street          *string `json:"Street"`
	Number          *string `json:"Number"`
	City            *string `json:"City"`
	OtherPostalCode *string `json:"OtherPostalCode"`
	Country         *string `json:"Country"`
	OtherCountry    *string `json:"OtherCountry"`
}

// PersonRecord is one natural person as disclosed in a filing.
type PersonRecord struct {
	FirstName *string `json:"FirstName"`
	LastName  *string `json:"LastName"`
	Address   Address `json:"Address"`
}

// EntityRecord is one legal entity as disclosed in a filing.
// Identifier is the registry number and is required downstream.
type EntityRecord struct {
	Identifier *string `json:"Identifier"`
	Name       *string `json:"Name"`
	Address    Address `json:"Address"`
}

// MandateDates bounds one mandate. Either side may be open.
type MandateDates struct {
	StartDate *string `json:"StartDate"`
	EndDate   *string `json:"EndDate"`
}

// Mandate is one function a person or entity holds at the filing company.
type Mandate struct {
	FunctionMandate *string      `json:"FunctionMandate"`
	MandateDates    MandateDates `json:"MandateDates"`
}

// NaturalPersonAdmin is a natural-person administrator with zero or more
// mandates. Zero mandates still yields one bare administrator link.
type NaturalPersonAdmin struct {
	Person   PersonRecord `json:"Person"`
	Mandates []Mandate    `json:"Mandates"`
}

// LegalPersonAdmin is a legal-entity administrator together with its
// natural-person representatives.
type LegalPersonAdmin struct {
	Entity          EntityRecord   `json:"Entity"`
	Representatives []PersonRecord `json:"Representatives"`
	Mandates        []Mandate      `json:"Mandates"`
}

// InterestHeld is one line of a participating interest.
type InterestHeld struct {
	Nature                 *string `json:"Nature"`
	Line                   *string `json:"Line"`
	Number                 *string `json:"Number"`
	PercentageDirectlyHeld *Number `json:"PercentageDirectlyHeld"`
	PercentageSubsidiaries *Number `json:"PercentageSubsidiaries"`
}

// ParticipatingInterest is one entity the filing company holds an interest
// in, with per-line detail.
type ParticipatingInterest struct {
	Entity      EntityRecord   `json:"Entity"`
	AccountDate *string        `json:"AccountDate"`
	Currency    *string        `json:"Currency"`
	Equity      *Number        `json:"Equity"`
	NetResult   *Number        `json:"NetResult"`
	Held        []InterestHeld `json:"ParticipatingInterestHeld"`
}

// RightsHeld is one line of voting or security rights held by a shareholder.
type RightsHeld struct {
	Nature                   *string `json:"Nature"`
	Line                     *string `json:"Line"`
	NumberSecuritiesAttached *Number `json:"NumberSecuritiesAttached"`
	NotSecuritiesAttached    *string `json:"not_securities_attached"`
	Percentage               *Number `json:"Percentage"`
}

// EntityShareholder is a legal-entity shareholder of the filing company.
type EntityShareholder struct {
	Entity     EntityRecord `json:"Entity"`
	RightsHeld []RightsHeld `json:"RightsHeld"`
}

// IndividualShareholder is a natural-person shareholder; person fields sit
// at the top level of the section rather than under a Person wrapper.
type IndividualShareholder struct {
	FirstName  *string      `json:"FirstName"`
	LastName   *string      `json:"LastName"`
	Address    Address      `json:"Address"`
	RightsHeld []RightsHeld `json:"RightsHeld"`
}

// Rubric is one accounting observation. Period "N" is the filed period;
// anything else (prior-year comparatives and the like) is discarded.
type Rubric struct {
	Period string  `json:"Period"`
	Code   *string `json:"Code"`
	Value  *Number `json:"Value"`
}

// Administrators groups the two administrator sections of a filing.
type Administrators struct {
	NaturalPersons []NaturalPersonAdmin `json:"NaturalPersons"`
	LegalPersons   []LegalPersonAdmin   `json:"LegalPersons"`
}

// Shareholders groups the two shareholder sections of a filing.
type Shareholders struct {
	EntityShareholders     []EntityShareholder     `json:"EntityShareHolders"`
	IndividualShareholders []IndividualShareholder `json:"IndividualShareHolders"`
}

// Filing is the full disclosure document for one statement.
type Filing struct {
	ReferenceNumber        *string                 `json:"ReferenceNumber"`
	EnterpriseName         *string                 `json:"EnterpriseName"`
	Address                Address                 `json:"Address"`
	Rubrics                []Rubric                `json:"Rubrics"`
	Administrators         Administrators          `json:"Administrators"`
	ParticipatingInterests []ParticipatingInterest `json:"ParticipatingInterests"`
	Shareholders           Shareholders            `json:"Shareholders"`
}

// Summary is one filed accounting period from the references list.
// Natural key: (enterprise id, start date, end date).
type Summary struct {
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

// References is the per-company filing catalogue: company attributes plus
// every filed period, with initial deposits separated from corrections so
// initial filings reconcile first.
type References struct {
	EnterpriseID   string
	EnterpriseName *string
	LegalSituation *string
	Summaries      []Summary
	Initial        []Summary
	Corrections    []Summary
}
