package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParent is matched by errors.Is for MissingParentError.
	ErrMissingParent = errors.New("missing parent reference")
	// ErrUnknownEntityType is matched by errors.Is for UnknownEntityTypeError.
	ErrUnknownEntityType = errors.New("unknown entity type")
	// ErrInvalidFields is matched by errors.Is for FieldsError.
	ErrInvalidFields = errors.New("invalid fields")
)

// MissingParentError is returned when an add omits the foreign key its
// entity type requires.
type MissingParentError struct {
	Entity EntityType
	Field  string
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("%s requires %s", e.Entity, e.Field)
}

// Unwrap exposes ErrMissingParent.
func (e *MissingParentError) Unwrap() error { return ErrMissingParent }

// UnknownEntityTypeError reports an entity tag outside EntityTypes.
type UnknownEntityTypeError struct {
	Type string
}

func (e *UnknownEntityTypeError) Error() string {
	return fmt.Sprintf("unknown entity type %q", e.Type)
}

// Unwrap exposes ErrUnknownEntityType.
func (e *UnknownEntityTypeError) Unwrap() error { return ErrUnknownEntityType }

// FieldsError wraps a failure to decode a field map into a record.
type FieldsError struct {
	Entity EntityType
	Err    error
}

func (e *FieldsError) Error() string {
	return fmt.Sprintf("decode %s fields: %v", e.Entity, e.Err)
}

// Unwrap returns the decoding error.
func (e *FieldsError) Unwrap() error { return e.Err }

// Is matches ErrInvalidFields.
func (e *FieldsError) Is(target error) bool { return target == ErrInvalidFields }

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Outcome Outcome
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Outcome.Violations {
		if v.Severity == SeverityBlock {
			return fmt.Sprintf("mutation blocked by rule %s: %s", v.Rule, v.Message)
		}
	}
	return "mutation blocked by rules"
}
