package dto

import (
	"errors"
	"net/http"

	"github.com/savings/backend/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// they were raised with.
const (
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "TOKEN_INVALID"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeBodyTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"
)

// KindHTTPStatus maps a domain error kind to its response status
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:            http.StatusNotFound,
	shared.KindInvalidState:        http.StatusUnprocessableEntity,
	shared.KindAuthorizationDenied: http.StatusForbidden,
	shared.KindCapacityExceeded:    http.StatusConflict,
	shared.KindConflictingRequest:  http.StatusConflict,
	shared.KindInvariantViolation:  http.StatusUnprocessableEntity,
	shared.KindValidation:          http.StatusBadRequest,
}

// StatusForKind returns the HTTP status for kind, 500 when unknown
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts err to a status code and error body. Non-domain errors
// become a generic internal error so nothing leaks to clients.
func FromError(err error) (int, *ErrorInfo) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return StatusForKind(de.Kind), &ErrorInfo{Code: de.Code, Message: de.Message}
	}
	return http.StatusInternalServerError, &ErrorInfo{Code: ErrCodeInternal, Message: "An unexpected error occurred"}
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponseWithRequestID creates an error response that echoes the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation failure response with per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
