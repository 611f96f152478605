// Package apperror defines the error categories shared by the service and
// handler layers.
//
// A service returns an *AppError carrying a category sentinel (ErrNotFound,
// ErrValidation, ...) and a client-safe message. The handler layer maps the
// category to an HTTP status; nothing below the handler knows about HTTP.
//
// An AppError may also carry a Cause: the precise domain reason, such as
// registration.ErrDuplicateCourse or auth.ErrInvalidCredentials. Unwrap
// returns both, so errors.Is matches either the category or the reason.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // category sentinel
	Message string // Human-readable error message, safe to show clients
	Field   string // Optional: field causing the error
	Code    string // Optional: machine-readable reason, e.g. "DuplicateCourse"
	Cause   error  // Optional: the domain error behind this one
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the category and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NotFound returns an AppError whose message is "<resource> not found".
// The id is kept out of the message so clients cannot probe for records.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, field string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with this %s already exists", resource, field),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for failed authentication.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Wrap builds an AppError of the given category around a domain error.
// The cause's own message becomes the client-visible message.
func Wrap(category error, code string, cause error) *AppError {
	return &AppError{
		Err:     category,
		Message: cause.Error(),
		Code:    code,
		Cause:   cause,
	}
}

// WithField returns e after setting its Field.
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

// WithCause returns e after attaching a domain cause.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}
