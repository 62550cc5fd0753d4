package dto

import (
	"net/http"

	"github.com/minimart/backend/internal/domain/shared"
)

// Transport-level error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when request body parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBodyTooLarge is used when the request body exceeds the limit
	ErrCodeBodyTooLarge = "BODY_TOO_LARGE"
	// ErrCodeDuplicateRequest is used when an idempotency key is replayed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes.
// Validation failures are the caller's input, state errors are business rule
// rejections, conflicts are retryable races, not-found is missing data.
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindState:      http.StatusUnprocessableEntity,
	shared.KindConflict:   http.StatusConflict,
	shared.KindNotFound:   http.StatusNotFound,
}

// StatusForKind returns the HTTP status code for a domain error kind.
// Unknown kinds map to 500 Internal Server Error.
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewDomainErrorResponse converts a domain error into a transport response
func NewDomainErrorResponse(err *shared.DomainError, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      err.Code,
			Message:   err.Message,
			State:     err.State,
			Retryable: err.Retryable(),
			RequestID: requestID,
		},
	}
}
