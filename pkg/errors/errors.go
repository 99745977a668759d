package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes one offending input field or column.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error represents a typed domain error with HTTP awareness. Only Code, Message and Fields
// are ever serialised; the wrapped cause stays server-side.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"detail"`
	Status  int          `json:"-"`
	Fields  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code so that clones of a predefined error compare equal to it.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors, one per failure kind the API exposes.
var (
	ErrValidation           = New("VALIDATION_ERROR", http.StatusUnprocessableEntity, "validation failed")
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrReferentialIntegrity = New("REFERENTIAL_INTEGRITY", http.StatusUnprocessableEntity, "invalid parent reference")
	ErrAuthFailure          = New("AUTH_FAILURE", http.StatusUnauthorized, "Invalid credentials")
	ErrConstraintViolation  = New("CONSTRAINT_VIOLATION", http.StatusUnprocessableEntity, "constraint violation")
	ErrConflict             = New("CONFLICT", http.StatusConflict, "conflict")
	ErrStoreTimeout         = New("STORE_TIMEOUT", http.StatusServiceUnavailable, "the data store timed out, please retry")
	ErrStoreUnavailable     = New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "the data store is unavailable, please retry")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithFields returns a copy of err carrying the offending fields.
func WithFields(err *Error, fields []FieldError) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Fields = append([]FieldError(nil), fields...)
	return &clone
}
