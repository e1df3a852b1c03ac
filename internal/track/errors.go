package track

import "errors"

var (
	ErrNotFound          = errors.New("track: not found")
	ErrInvalidInput      = errors.New("track: invalid input")
	ErrInvalidTransition = errors.New("track: invalid status transition")
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
