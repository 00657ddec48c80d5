package domain

import "fmt"

// ErrorKind classifies domain errors so transport layers can map them to status codes.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindForbidden     ErrorKind = "forbidden"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindConflict      ErrorKind = "conflict"
	KindInvalidState  ErrorKind = "invalid_state"
	KindUnprocessable ErrorKind = "unprocessable"
)

// KindedError is implemented by every error in the domain taxonomy.
type KindedError interface {
	error
	Kind() ErrorKind
}

// ValidationError reports malformed input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string   { return "validation error: " + e.Message }
func (e *ValidationError) Kind() ErrorKind { return KindValidation }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a new NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}
func (e *NotFoundError) Kind() ErrorKind { return KindNotFound }

// ForbiddenError reports that the actor may not perform the operation.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a new ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func (e *ForbiddenError) Error() string   { return "forbidden: " + e.Message }
func (e *ForbiddenError) Kind() ErrorKind { return KindForbidden }

// UnauthorizedError reports a missing or invalid identity.
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string   { return "unauthorized: " + e.Message }
func (e *UnauthorizedError) Kind() ErrorKind { return KindUnauthorized }

// ConflictError reports a concurrent modification detected by optimistic locking.
type ConflictError struct {
	Message string
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string   { return "conflict: " + e.Message }
func (e *ConflictError) Kind() ErrorKind { return KindConflict }

// InvalidStateError reports a transition that the current state does not permit.
type InvalidStateError struct {
	From   string
	Action string
}

// NewInvalidStateError creates a new InvalidStateError.
func NewInvalidStateError(from, action string) *InvalidStateError {
	return &InvalidStateError{From: from, Action: action}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition: cannot %s from %s", e.Action, e.From)
}
func (e *InvalidStateError) Kind() ErrorKind { return KindInvalidState }
