package domain

import "errors"

// ErrorCode categorizes renewal failures by who is at fault.
// These codes are stable and can be used for programmatic error handling.
type ErrorCode string

const (
	// ErrCodeInvalidRequest marks client faults: a missing or
	// wrong-state token, a proof-of-possession mismatch, an audience
	// mismatch. Retrying the same request will not succeed.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeRequestFailed marks service or policy faults: a missing
	// cache or cached record, policy denials, signing or cache
	// failures. The caller may retry later.
	ErrCodeRequestFailed ErrorCode = "request_failed"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// RenewalError is a structured error with code, message, and optional cause.
type RenewalError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RenewalError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RenewalError) Unwrap() error {
	return e.Cause
}

// InvalidRequestError creates a client-fault error.
func InvalidRequestError(message string) *RenewalError {
	return &RenewalError{Code: ErrCodeInvalidRequest, Message: message}
}

// RequestFailedError creates a service-fault error with optional cause.
func RequestFailedError(message string, cause error) *RenewalError {
	return &RenewalError{Code: ErrCodeRequestFailed, Message: message, Cause: cause}
}

// CodeOf extracts the error code from an error chain. Errors outside
// the renewal error type read as request failures.
func CodeOf(err error) ErrorCode {
	var re *RenewalError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeRequestFailed
}

// IsInvalidRequest reports whether the error chain is a client fault.
func IsInvalidRequest(err error) bool {
	return CodeOf(err) == ErrCodeInvalidRequest
}

// IsRequestFailed reports whether the error chain is a service fault.
func IsRequestFailed(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeRequestFailed
}
