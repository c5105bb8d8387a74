package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPage signals a page number that is not a positive integer.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidLimit signals a page size outside the allowed range.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidSortField signals a sort field missing from the allow-list.
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidSortOrder signals a sort order other than asc/desc.
	ErrInvalidSortOrder = errors.New("invalid sort order")
	// ErrInvalidFilter signals a field filter that cannot be applied.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidSearch signals a missing or too short search term.
	ErrInvalidSearch = errors.New("invalid search")
	// ErrInvalidID signals a malformed resource identifier.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// ValidationError wraps a caller-input sentinel with a message the caller can act on.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError creates a ValidationError for the given sentinel.
func NewValidationError(sentinel error, format string, args ...any) error {
	return &ValidationError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}
