package ingest

import "fmt"

// Kind classifies one recoverable accumulation error.
type Kind string

const (
	// KindMalformedRecord marks a single nested item that failed to parse;
	// the item is skipped and its siblings continue.
	KindMalformedRecord Kind = "malformed_record"
	// KindMissingRequiredField marks a record lacking a field needed to
	// build its key; treated exactly like a malformed record.
	KindMissingRequiredField Kind = "missing_required_field"
	// KindUnresolvableFiling marks a filing document that could not be
	// loaded or decoded; the whole filing is skipped.
	KindUnresolvableFiling Kind = "unresolvable_filing"
)

// ItemError records one skipped record with enough context to locate it.
type ItemError struct {
	Kind         Kind
	EnterpriseID string
	FilingID     string
	Section      string
	Err          error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: enterprise %s filing %s section %s: %v",
		e.Kind, e.EnterpriseID, e.FilingID, e.Section, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Report aggregates the recoverable errors of one company's accumulation
// pass. No entry in the report ever aborts sibling records or other
// companies.
type Report struct {
	Errors []ItemError
}

func (r *Report) add(kind Kind, enterpriseID, filingID, section string, err error) {
	r.Errors = append(r.Errors, ItemError{
		Kind:         kind,
		EnterpriseID: enterpriseID,
		FilingID:     filingID,
		Section:      section,
		Err:          err,
	})
}

// Empty reports whether the pass completed without skipping anything.
func (r *Report) Empty() bool { return len(r.Errors) == 0 }
