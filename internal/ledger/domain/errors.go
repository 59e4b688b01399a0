package domain

import (
	"errors"
	"fmt"
)

// Domain errors (no external dependencies)
var (
	ErrNotFound          = errors.New("product not found")
	ErrAlreadyExists     = errors.New("product already registered")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("balance version conflict, retry the operation")
)

// ValidationError reports malformed input. It is always raised before any
// state is touched, and names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
