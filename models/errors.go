package models

import "errors"

// Error kinds surfaced by the event core. The HTTP layer maps these to
// status codes; everything else wraps them with context via fmt.Errorf and %w.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidState = errors.New("action not allowed in current state")
	ErrForbidden    = errors.New("temporarily unable to perform this action")
	ErrConflict     = errors.New("transaction conflict")
)
