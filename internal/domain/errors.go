package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, note content too short).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an insert would violate a uniqueness
// invariant (e.g. a duplicate normalized city/state territory).
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")
