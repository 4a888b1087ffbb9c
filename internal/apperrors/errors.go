// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("permission denied")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// CustomError attaches a caller-facing message to one of the sentinel errors.
type CustomError struct {
	Err     error
	Message string
}

// Error implements error.
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes the sentinel for errors.Is.
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NotFound builds a not-found error with the given message.
func NotFound(message string) error {
	return &CustomError{Err: ErrNotFound, Message: message}
}

// Forbidden builds a permission error with the given message.
func Forbidden(message string) error {
	return &CustomError{Err: ErrForbidden, Message: message}
}

// Conflict builds an error for operations blocked by existing state.
func Conflict(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// Unauthorized builds an authentication error with the given message.
func Unauthorized(message string) error {
	return &CustomError{Err: ErrUnauthorized, Message: message}
}

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation returns a validation error with a single field message.
func NewValidation(field, message string) *ValidationError {
	v := &ValidationError{Fields: map[string][]string{}}
	v.Add(field, message)
	return v
}

// Add appends a message for the field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field has messages.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Error implements error with the fields in stable order.
func (e *ValidationError) Error() string {
	if e.Empty() {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, strings.Join(e.Fields[key], " "))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, " "))
}

// Unwrap exposes ErrValidation for errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// OrNil returns nil when no messages were collected.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// FromValidator converts validator.ValidationErrors into a ValidationError.
// Any other error is returned unchanged.
func FromValidator(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	out := &ValidationError{Fields: map[string][]string{}}
	for _, fieldErr := range fieldErrors {
		out.Add(fieldErr.Field(), messageFor(fieldErr))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "hexcolor":
		return fmt.Sprintf("The %s format is invalid.", label)
	case "datetime":
		return fmt.Sprintf("The %s is not a valid date.", label)
	case "gt", "gte":
		return fmt.Sprintf("The %s must be greater than %s.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
