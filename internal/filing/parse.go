package filing

import (
	"encoding/json"
	"strings"
	"time"

	dErrors "cbso/pkg/domain-errors"
)

// DateLayout is the wire format for all registry dates.
const DateLayout = "2006-01-02"

// Deposit types the pipeline distinguishes; anything else is ignored.
const (
	DepositInitial    = "Initial"
	DepositCorrection = "Correction"
)

type referenceWire struct {
	EnterpriseNumber string  `json:"EnterpriseNumber"`
	EnterpriseName   *string `json:"EnterpriseName"`
	LegalSituation   *string `json:"LegalSituation"`
	ExerciseDates    struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"ExerciseDates"`
	ReferenceNumber string  `json:"ReferenceNumber"`
	DepositDate     *string `json:"DepositDate"`
	DepositType     string  `json:"DepositType"`
	LegalForm       string  `json:"LegalForm"`
	ActivityCode    *string `json:"ActivityCode"`
	ModelType       string  `json:"ModelType"`
}

// ParseReferences decodes a company's references payload. The company
// attributes come from the newest element; each element becomes one
// statement summary with account year derived as end-date year plus one.
//
// A malformed element is fatal for the whole references list: without a
// trustworthy catalogue the company cannot be reconciled at all.
func ParseReferences(data []byte, now time.Time) (*References, error) {
	var wire []referenceWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "decode references payload")
	}
	if len(wire) == 0 {
		return nil, dErrors.New(dErrors.CodeMalformedRecord, "references payload is empty")
	}

	latest := wire[len(wire)-1]
	refs := &References{
		EnterpriseID:   DigitsOnly(latest.EnterpriseNumber),
		EnterpriseName: latest.EnterpriseName,
		LegalSituation: latest.LegalSituation,
	}
	if refs.EnterpriseID == "" {
		return nil, dErrors.New(dErrors.CodeMalformedRecord, "references carry no enterprise number")
	}

	for _, w := range wire {
		start, err := time.Parse(DateLayout, w.ExerciseDates.StartDate)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "reference start date")
		}
		end, err := time.Parse(DateLayout, w.ExerciseDates.EndDate)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "reference end date")
		}
		var deposit *time.Time
		if w.DepositDate != nil {
			d, err := time.Parse(DateLayout, *w.DepositDate)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "reference deposit date")
			}
			deposit = &d
		}

		s := Summary{
			EnterpriseID: refs.EnterpriseID,
			StartDate:    start,
			EndDate:      end,
			FilingID:     w.ReferenceNumber,
			AccountYear:  end.Year() + 1,
			DepositDate:  deposit,
			DepositType:  w.DepositType,
			LegalForm:    w.LegalForm,
			ActivityCode: w.ActivityCode,
			ModelType:    w.ModelType,
			LastUpdate:   now,
		}
		refs.Summaries = append(refs.Summaries, s)
		switch w.DepositType {
		case DepositInitial:
			refs.Initial = append(refs.Initial, s)
		case DepositCorrection:
			refs.Corrections = append(refs.Corrections, s)
		}
	}
	return refs, nil
}

// ParseFiling decodes one disclosure document.
func ParseFiling(data []byte) (*Filing, error) {
	var f Filing
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedRecord, "decode filing payload")
	}
	return &f, nil
}

// DigitsOnly strips everything but decimal digits; registry enterprise
// numbers arrive dotted, spaced, or bare.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Registry scheme prefixes on coded values.
const (
	prefixPostal   = "pcd:m"
	prefixCountry  = "cty:m"
	prefixFunction = "fct:m"
	prefixCurrency = "ccy:m"
)

// StripPostal removes the postal-code scheme prefix.
func StripPostal(s string) string { return strings.ReplaceAll(s, prefixPostal, "") }

// StripCountry removes the country scheme prefix.
func StripCountry(s string) string { return strings.ReplaceAll(s, prefixCountry, "") }

// StripFunction removes the mandate-function scheme prefix.
func StripFunction(s string) string { return strings.ReplaceAll(s, prefixFunction, "") }

// StripCurrency removes the currency scheme prefix.
func StripCurrency(s string) string { return strings.ReplaceAll(s, prefixCurrency, "") }
