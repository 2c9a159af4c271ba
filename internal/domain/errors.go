// Package domain contains the core business entities for Inkwell.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrForbidden indicates the actor is not allowed to mutate the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials indicates authentication failed. It is deliberately
	// generic: callers must not be able to tell a missing user from a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError indicates an input failed validation. Field names the
// offending input so transports can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Reason)
}

// NewValidationError creates a field-tagged validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Resource)
}

// NewNotFoundError creates a resource-tagged not-found error.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// AlreadyExistsError indicates a uniqueness constraint was violated.
// Field names the constraint that fired (username, email).
type AlreadyExistsError struct {
	Field string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("resource already exists: %s", e.Field)
}

// NewAlreadyExistsError creates a field-tagged already-exists error.
func NewAlreadyExistsError(field string) *AlreadyExistsError {
	return &AlreadyExistsError{Field: field}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAlreadyExists reports whether err is an AlreadyExistsError.
func IsAlreadyExists(err error) bool {
	var ae *AlreadyExistsError
	return errors.As(err, &ae)
}
