package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected input; match with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a trend id does not exist.
	ErrNotFound = errors.New("trend not found")

	// ErrProvider wraps every failure of the external LLM provider.
	ErrProvider = errors.New("provider error")
)

// ValidationError describes why a request or a single batch item was rejected.
// Index is -1 when the error is not tied to a batch item.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError that is not tied to a batch item
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s %s", e.Index, e.Field, e.Reason)
	}
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
