package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing document, schema or saved search.
	ErrNotFound = errors.New("not found")
	// ErrInvalidType signals an unregistered document type.
	ErrInvalidType = errors.New("invalid document type")
	// ErrInvalidQuery signals a malformed query or filter operand.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrValidation signals a document or input that fails validation.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrConflict signals a request that contradicts existing state.
	ErrConflict = errors.New("conflict")
)

// FieldError attaches the offending field to one of the sentinel kinds above.
type FieldError struct {
	Field  string
	Reason string
	Kind   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Kind.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// NewValidationError creates a FieldError of kind ErrValidation.
func NewValidationError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Kind: ErrValidation}
}

// NewQueryError creates a FieldError of kind ErrInvalidQuery.
func NewQueryError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Kind: ErrInvalidQuery}
}
