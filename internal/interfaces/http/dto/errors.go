package dto

import (
	"net/http"

	"github.com/bizledger/backend/internal/domain/shared"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeUnauthorized: http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,
	shared.CodeNotFound:     http.StatusNotFound,

	// Client errors all share 400 so clients branch on the code
	shared.CodeValidation:            http.StatusBadRequest,
	shared.CodeInvalidInput:          http.StatusBadRequest,
	shared.CodeInUse:                 http.StatusBadRequest,
	shared.CodeDuplicateCode:         http.StatusBadRequest,
	shared.CodeInsufficientInventory: http.StatusBadRequest,
	shared.CodeMissingParameters:     http.StatusBadRequest,

	shared.CodeReportFailed: http.StatusInternalServerError,
	shared.CodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ValidationDetail describes one invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the error part of the envelope
type ErrorBody struct {
	Code      string         `json:"code" example:"RESOURCE_NOT_FOUND"`
	Message   string         `json:"message" example:"Customer not found"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// ErrorResponse is the error envelope
// @Description Error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(code, message string, details map[string]any) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}}
}

// NewErrorResponseWithRequestID creates an error envelope tagged with the
// request id
func NewErrorResponseWithRequestID(code, message, requestID string, details map[string]any) ErrorResponse {
	resp := NewErrorResponse(code, message, details)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a VALIDATION_ERROR envelope listing the
// offending fields
func NewValidationErrorResponse(message, requestID string, fields []ValidationDetail) ErrorResponse {
	var details map[string]any
	if len(fields) > 0 {
		details = map[string]any{"fields": fields}
	}
	return NewErrorResponseWithRequestID(shared.CodeValidation, message, requestID, details)
}
