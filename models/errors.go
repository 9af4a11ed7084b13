package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
	ErrCodeBackendError       = "BACKEND_ERROR"
	ErrCodeMalformedResponse  = "MALFORMED_BACKEND_RESPONSE"
	ErrCodeJobFailed          = "JOB_FAILED"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GatewayError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type GatewayError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(code, message string, err error) *GatewayError {
	return &GatewayError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *GatewayError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
