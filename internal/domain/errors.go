package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID indicates an identifier that is not in the store's format.
	ErrInvalidID = errors.New("invalid id")

	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
