package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrInvalidState         = errors.New("operation not allowed in current state")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrOnboardingIncomplete = errors.New("contractor has not completed payout onboarding")
	ErrInsufficientBalance  = errors.New("insufficient credit balance")
	ErrValidation           = errors.New("validation failed")
)

// ProcessorError wraps a failure from the external transfer processor.
// Treated as retryable: the caller may re-dispatch with the same idempotency key.
type ProcessorError struct {
	Op  string
	Err error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s: %v", e.Op, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// IsProcessorError reports whether err originated at the processor boundary.
func IsProcessorError(err error) bool {
	var pe *ProcessorError
	return errors.As(err, &pe)
}
