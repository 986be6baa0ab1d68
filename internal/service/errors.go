package service

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound covers missing concerts, orders, notifications and
	// checkout selections.
	ErrNotFound = errors.New("not found")

	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrCheckoutClosed is returned for changes to a completed checkout.
	ErrCheckoutClosed = errors.New("checkout already completed")
)

// FieldError names one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is a recoverable input error.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return e.Message + " (" + strings.Join(names, ", ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// now is the default clock. Timestamps are UTC without a monotonic
// reading so they compare equal after a JSON round trip.
func now() time.Time {
	return time.Now().UTC().Round(0)
}
