package shared

import "errors"

// ErrorKind classifies a DomainError for the request boundary
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindAuthorizationDenied ErrorKind = "AUTHORIZATION_DENIED"
	KindCapacityExceeded    ErrorKind = "CAPACITY_EXCEEDED"
	KindConflictingRequest  ErrorKind = "CONFLICTING_REQUEST"
	KindInvariantViolation  ErrorKind = "INVARIANT_VIOLATION"
	KindValidation          ErrorKind = "VALIDATION"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new validation-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewKindError creates a domain error with an explicit kind
func NewKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// NewNotFoundError creates a NotFound domain error
func NewNotFoundError(code, message string) *DomainError {
	return NewKindError(KindNotFound, code, message)
}

// NewInvalidStateError creates an InvalidState domain error
func NewInvalidStateError(code, message string) *DomainError {
	return NewKindError(KindInvalidState, code, message)
}

// NewForbiddenError creates an AuthorizationDenied domain error
func NewForbiddenError(code, message string) *DomainError {
	return NewKindError(KindAuthorizationDenied, code, message)
}

// NewConflictError creates a ConflictingRequest domain error
func NewConflictError(code, message string) *DomainError {
	return NewKindError(KindConflictingRequest, code, message)
}

// KindOf returns the kind of err, or "" when err is not a DomainError
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewKindError(KindAuthorizationDenied, "UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewForbiddenError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewInvalidStateError("INVALID_STATE", "Operation not allowed in current state")
)
