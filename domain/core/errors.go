package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrItemNotFound    = fmt.Errorf("%w: item", ErrNotFound)
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrLengthMismatch   = fmt.Errorf("%w: series length mismatch", ErrInvalidInput)
	ErrEmptySlice       = fmt.Errorf("%w: empty slice", ErrInvalidInput)
	ErrNonNumericColumn = fmt.Errorf("%w: non-numeric column", ErrInvalidInput)
	ErrInvalidFormat    = fmt.Errorf("%w: invalid project file format", ErrInvalidInput)

	// Collision errors
	ErrDuplicateID   = errors.New("duplicate identifier")
	ErrDuplicateName = errors.New("duplicate name")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewInvalidInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

func NewDuplicateNameError(kind string, name string) error {
	return fmt.Errorf("%w: %s %q already exists", ErrDuplicateName, kind, name)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateID) || errors.Is(err, ErrDuplicateName)
}
