// Package apperr holds the error kinds shared by every domain package.
// Domain errors wrap one of the kinds so the transport layer can map them
// to a status code without importing the domain.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalid         = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("service unavailable")
	ErrUpstream        = errors.New("upstream failure")
)

// ValidationError carries field-level messages.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Field is a shorthand for a single-field validation error.
func Field(name, message string) *ValidationError {
	return NewValidation().Add(name, message)
}

func (v *ValidationError) Add(field, message string) *ValidationError {
	v.Fields[field] = append(v.Fields[field], message)
	return v
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// OrNil returns v when it holds messages, nil otherwise.
func (v *ValidationError) OrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrInvalid) match validation errors.
func (v *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Error pairs a client-facing message with its kind and optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// New returns an error of kind whose text is exactly message.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err under kind, keeping err's text as the message.
func Wrap(kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
