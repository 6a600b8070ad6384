// Package errors provides common domain error types for the canonize application.
//
// This package defines sentinel errors for common domain conditions like "not found"
// or "unmapped label" that can be used across all packages. Using typed errors enables
// consistent error handling patterns with errors.Is() checks.
//
// Usage:
//
//	import czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
//
//	// Return a domain error
//	return nil, czerrors.ErrNotFound
//
//	// Check for domain errors
//	if czerrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import (
	"errors"
	"fmt"
)

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnmappedLabel indicates a mention label has no alias binding to a
	// canonical entity.
	ErrUnmappedLabel = errors.New("unmapped label")

	// ErrConservation indicates the junction table does not hold exactly one
	// row per staged mention.
	ErrConservation = errors.New("conservation violation")

	// ErrOrphanMention indicates a junction row references a canonical entity
	// that does not exist.
	ErrOrphanMention = errors.New("orphan mention")
)

// Newf wraps a sentinel error with formatted context so callers can both
// read the detail and match with errors.Is().
func Newf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether any error in err's chain is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAlreadyExists reports whether any error in err's chain is ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsUnmappedLabel reports whether any error in err's chain is ErrUnmappedLabel.
func IsUnmappedLabel(err error) bool {
	return errors.Is(err, ErrUnmappedLabel)
}

// IsConservation reports whether any error in err's chain is ErrConservation.
func IsConservation(err error) bool {
	return errors.Is(err, ErrConservation)
}

// IsOrphanMention reports whether any error in err's chain is ErrOrphanMention.
func IsOrphanMention(err error) bool {
	return errors.Is(err, ErrOrphanMention)
}
