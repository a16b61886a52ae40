package domain

import (
	"errors"
	"sort"
	"strings"
)

// ValidationError carries per-field messages for input that failed a
// field-level or semantic constraint.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// FieldError creates a ValidationError for a single field.
func FieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Add(field, message)
	return e
}

// Add records a message for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// Merge adds the fields of err when it is a ValidationError. Fields already
// recorded on e keep their message.
func (e *ValidationError) Merge(err error) {
	var other *ValidationError
	if !errors.As(err, &other) {
		return
	}
	for field, msg := range other.Fields {
		e.Add(field, msg)
	}
}

// Empty reports whether no field has been recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when no field was recorded.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
