package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Unwrap(t *testing.T) {
	err := NewValidationError(ErrInvalidLimit, "limit must be between %d and %d", 1, 100)

	if !errors.Is(err, ErrInvalidLimit) {
		t.Error("errors.Is(err, ErrInvalidLimit) = false")
	}
	if errors.Is(err, ErrInvalidPage) {
		t.Error("errors.Is(err, ErrInvalidPage) = true")
	}
	if err.Error() != "limit must be between 1 and 100" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("parse query: %w", NewValidationError(ErrInvalidSortOrder, "bad order"))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As failed")
	}
	if ve.Message != "bad order" {
		t.Errorf("Message = %q", ve.Message)
	}
	if !errors.Is(err, ErrInvalidSortOrder) {
		t.Error("errors.Is(err, ErrInvalidSortOrder) = false")
	}
}
