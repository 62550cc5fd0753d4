package shared

import "fmt"

// ErrorKind classifies a domain error for transport mapping and retry decisions
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindState      ErrorKind = "STATE"
	KindConflict   ErrorKind = "CONFLICT"
	KindNotFound   ErrorKind = "NOT_FOUND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// State carries the offending current state for STATE errors, empty otherwise
	State string `json:"state,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("%s (current state: %s)", e.Message, e.State)
	}
	return e.Message
}

// Retryable reports whether retrying the same operation may succeed.
// Only conflicts from concurrent modification qualify.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindConflict
}

// NewValidationError creates an error for malformed or out-of-range input
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewStateError creates an error for an operation not allowed in the current state
func NewStateError(code, message, state string) *DomainError {
	return &DomainError{Kind: KindState, Code: code, Message: message, State: state}
}

// NewConflictError creates a retryable error for concurrent-modification conflicts
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// NewNotFoundError creates an error for a missing resource
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrStockConflict       = NewConflictError("STOCK_CONFLICT", "Stock level was modified by another process")
	ErrNegativeStock       = NewValidationError("NEGATIVE_STOCK", "Operation would drive stock below zero")
)
