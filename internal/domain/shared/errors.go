package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context. They are the only codes that
// reach API clients.
const (
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeValidation            = "VALIDATION_ERROR"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeNotFound              = "RESOURCE_NOT_FOUND"
	CodeInUse                 = "RESOURCE_IN_USE"
	CodeDuplicateCode         = "DUPLICATE_CODE"
	CodeInsufficientInventory = "INSUFFICIENT_INVENTORY"
	CodeMissingParameters     = "MISSING_PARAMETERS"
	CodeReportFailed          = "REPORT_EXECUTION_FAILED"
	CodeInternal              = "INTERNAL_SERVER_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so that errors.Is(err, ErrNotFound) works
// for errors created with different messages.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of the error carrying the given details
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCause returns a copy of the error wrapping cause
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.cause = cause
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnauthorized          = NewDomainError(CodeUnauthorized, "Authentication required")
	ErrForbidden             = NewDomainError(CodeForbidden, "You do not have permission to perform this action")
	ErrInvalidInput          = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrNotFound              = NewDomainError(CodeNotFound, "Resource not found")
	ErrInUse                 = NewDomainError(CodeInUse, "Resource is in use and cannot be deleted")
	ErrDuplicateCode         = NewDomainError(CodeDuplicateCode, "A record with this code already exists")
	ErrInsufficientInventory = NewDomainError(CodeInsufficientInventory, "Insufficient inventory")
	ErrMissingParameters     = NewDomainError(CodeMissingParameters, "Required report parameters are missing")
	ErrReportFailed          = NewDomainError(CodeReportFailed, "Report execution failed")
	ErrSystemResource        = NewDomainError(CodeForbidden, "System resources cannot be modified or deleted")
)

// InvalidInput builds an INVALID_INPUT error with a specific message
func InvalidInput(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// NotFound builds a RESOURCE_NOT_FOUND error naming the missing resource
func NotFound(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// InUse builds a RESOURCE_IN_USE error with the counts of blocking dependents
func InUse(resource string, counts map[string]any) *DomainError {
	return NewDomainError(CodeInUse, resource+" is referenced by other records and cannot be deleted").
		WithDetails(counts)
}

// DuplicateCode builds a DUPLICATE_CODE error for the given code value
func DuplicateCode(resource, code string) *DomainError {
	return NewDomainError(CodeDuplicateCode, fmt.Sprintf("%s with code '%s' already exists", resource, code)).
		WithDetails(map[string]any{"code": code})
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
