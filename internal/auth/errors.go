package auth

import "errors"

var (
	ErrNotFound     = errors.New("auth: not found")
	ErrConflict     = errors.New("auth: already exists")
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrInvalidToken covers both malformed and expired tokens at the
	// boundary; the codec keeps the distinction internal.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// FieldError names the input field that failed validation. It unwraps to
// ErrInvalidInput so callers can keep matching on the sentinel.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

func (e *FieldError) Unwrap() error { return ErrInvalidInput }

func invalidField(field, msg string) error { return &FieldError{Field: field, Msg: msg} }
