package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing task and a task owned by someone
	// else; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when registering an already-known email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is the single login failure, whether the user
	// is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a caller-correctable input problem.
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

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
