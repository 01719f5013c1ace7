package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrEmptyContent   = errors.New("message is empty")
	ErrNegativeCursor = errors.New("cursor must not be negative")
	ErrNotJoined      = errors.New("not joined")

	// ErrCursorRegressed is returned when a cursor update would move backwards.
	ErrCursorRegressed = errors.New("cursor regressed")
)

// ValidationError is a local rejection raised before any network call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
