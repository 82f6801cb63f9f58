package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a case or one of its child records does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is illegal for the current
	// state of the case or payment, e.g. confirming an already-confirmed
	// escalation or marking a cancelled promised payment as paid.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized is returned when the caller's role lacks the capability
	// required for the operation on this case.
	ErrUnauthorized = errors.New("unauthorized")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
