package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds reported to HTTP clients
const (
	KindValidation   = "validation_error"
	KindDuplicate    = "duplicate_key"
	KindNotFound     = "not_found"
	KindUpstream     = "upstream_error"
	KindStore        = "store_error"
	KindUnauthorized = "unauthorized"
)

var (
	// ErrDuplicateKey is returned by stores when the register number is taken
	ErrDuplicateKey = errors.New("register number already exists")

	// ErrNotFound is returned when no record matches the requested id
	ErrNotFound = errors.New("student not found")
)

// FieldError describes one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in a submission
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field problem
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field was already rejected
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// HasErrors reports whether any field was rejected
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// UpstreamError wraps a failed call to the generative-language API.
// StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feedback upstream returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("feedback upstream failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// StoreError wraps any persistence failure that is not a duplicate or a miss
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
