// File: services/booking/errors.go
package booking

import "fmt"

// WorkflowError is a guard rejection, recoverable by correcting input.
type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrNoSlotSelected rejects advancing without an open selected slot.
func ErrNoSlotSelected() error {
	return &WorkflowError{Code: "noSlotSelected", Message: "select an open time slot first"}
}

// ErrTermsNotAccepted rejects confirming without accepted terms.
func ErrTermsNotAccepted() error {
	return &WorkflowError{Code: "termsNotAccepted", Message: "terms must be accepted before confirming"}
}

// ErrInvalidTransition rejects a step called from the wrong state.
func ErrInvalidTransition(from, attempted string) error {
	return &WorkflowError{
		Code:    "invalidTransition",
		Message: fmt.Sprintf("cannot %s from state %s", attempted, from),
	}
}

// ErrSessionNotFound marks an unknown or expired workflow session.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("booking session %s not found or expired", e.SessionID)
}
