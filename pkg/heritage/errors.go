package heritage

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error types
var (
	// ErrNotFound indicates the referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidEmail indicates a subscriber email failed the format check
	ErrInvalidEmail = errors.New("invalid email format")
)

// EntityError represents an error related to a record operation
type EntityError struct {
	Entity string
	ID     string
	Op     string
	Err    error
}

func (e *EntityError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s operation %s failed: %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("%s operation %s failed for %s: %v", e.Entity, e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// ValidationError reports input fields that failed validation, keyed by
// their JSON names.
type ValidationError struct {
	Entity string
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Entity, e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

// FieldErrors flattens the per-field errors into messages
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, err := range e.Fields {
		out[field] = err.Error()
	}
	return out
}

// ValidateInput runs v.Validate and converts field errors into a *ValidationError
func ValidateInput(entity string, v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Entity: entity, Fields: fields}
	}
	return err
}
