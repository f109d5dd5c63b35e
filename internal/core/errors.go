package core

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these so callers can branch with errors.Is.
var (
	// ErrStorageUnavailable marks a ledger store connection, auth or I/O failure.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPriceSourceUnavailable marks a failed quote lookup for one symbol.
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
	// ErrInvalidInput marks user input rejected before it reaches the store.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks a misconfiguration, e.g. a zero price for a share-loss instrument.
	ErrConfiguration = errors.New("configuration error")
)

// InputError describes which field was rejected and why.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid returns an *InputError for field.
func Invalid(field, message string) error {
	return &InputError{Field: field, Message: message}
}

// Unavailable wraps err as a storage failure for the given operation.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
