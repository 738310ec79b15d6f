// Package apperr defines the error taxonomy shared by the services and its
// translation into HTTP responses.
package apperr

import (
	"fmt"
	"strings"
)

// FieldError is one field-scoped validation failure.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError is a client-correctable failure listing every offending field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Prefixed returns the fields with prefix prepended to each path.
func (e *ValidationError) Prefixed(prefix string) []FieldError {
	out := make([]FieldError, 0, len(e.Fields))
	for _, f := range e.Fields {
		p := prefix
		if f.Path != "" {
			p += "." + f.Path
		}
		out = append(out, FieldError{Path: p, Message: f.Message})
	}
	return out
}

// Validation builds a ValidationError from fields.
func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Field is shorthand for a FieldError literal.
func Field(path, message string) FieldError {
	return FieldError{Path: path, Message: message}
}

// NotFoundError means the referenced entity does not exist or is not owned
// by the parent in the request.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// NotFound returns a NotFoundError for entity.
func NotFound(entity string) error { return &NotFoundError{Entity: entity} }

// ConflictError means the write clashes with existing state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict returns a ConflictError with a formatted message.
func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// BadRequestError covers malformed requests that never reach validation
// (unparseable ids, broken JSON).
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// BadRequest returns a BadRequestError.
func BadRequest(message string) error { return &BadRequestError{Message: message} }
