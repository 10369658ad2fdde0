// Package apperrors provides structured application errors with HTTP status mapping.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNotReady     = errors.New("not ready")
	ErrCollaborator = errors.New("collaborator error")
)

// Error provides structured error with context.
type Error struct {
	Sentinel error  // Wrapped sentinel for errors.Is() classification
	Message  string // Human-readable message
	Field    string // For validation errors (e.g., "name")
	Resource string // For not found errors (e.g., "job")
	Op       string // Operation that failed (e.g., "workflow.submit")
	Cause    error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() classification.
func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Validation creates a validation error for a specific field.
func Validation(field, message string) error {
	return &Error{
		Sentinel: ErrValidation,
		Message:  message,
		Field:    field,
	}
}

// Unauthorized creates a secret-mismatch error. The message deliberately
// carries no detail so a caller cannot tell a wrong secret from a record
// whose secret it never held.
func Unauthorized() error {
	return &Error{
		Sentinel: ErrUnauthorized,
		Message:  "unauthorized",
	}
}

// NotFound creates a not found error for a resource.
func NotFound(resource, id string) error {
	return &Error{
		Sentinel: ErrNotFound,
		Message:  fmt.Sprintf("%s %s not found", resource, id),
		Resource: resource,
	}
}

// NotReady signals a result requested before the job reached terminal
// success.
func NotReady(id string) error {
	return &Error{
		Sentinel: ErrNotReady,
		Message:  fmt.Sprintf("job %s is not finished", id),
	}
}

// Collaborator wraps a failure from the workflow engine or the object
// store. The cause is kept for logs; callers only see the stringified
// message.
func Collaborator(op string, cause error) error {
	return &Error{
		Sentinel: ErrCollaborator,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}
