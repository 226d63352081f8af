package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrUnknownColumn   = fmt.Errorf("%w: column", ErrNotFound)
	ErrNoTable         = errors.New("no table loaded for session")

	// Validation errors
	ErrEmptyTable      = errors.New("table has no columns")
	ErrRaggedTable     = errors.New("columns have different lengths")
	ErrNonNumericValue = errors.New("column is not numeric")
)

// NewUnknownColumnError reports a column name that does not exist in a table
func NewUnknownColumnError(name string) error {
	return fmt.Errorf("%w %q", ErrUnknownColumn, name)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnknownColumnError(err error) bool {
	return errors.Is(err, ErrUnknownColumn)
}
