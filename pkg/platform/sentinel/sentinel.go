package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and boundary clients
// return these (optionally wrapped) so callers can translate them into
// domain errors.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	// ErrNotFound: row or cached payload does not exist.
	ErrNotFound = errors.New("not found")
)
