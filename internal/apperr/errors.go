// Package apperr defines the error taxonomy shared by the service layer and
// the HTTP edge. Handlers map these with errors.Is/errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError carries a client-facing message for a rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid wraps err (typically an ozzo-validation error set) as a validation error.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Msg: err.Error()}
}

// Invalidf builds a validation error from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound carrying the resource name, e.g. "portfolio item not found".
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
