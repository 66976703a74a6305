package samlsts

import (
	"github.com/yehevah/saml-sts/internal/core/domain"
)

// Re-export error types from the domain package so callers can handle
// renewal faults without importing internal packages.
type ErrorCode = domain.ErrorCode
type RenewalError = domain.RenewalError

// Re-export error code constants
const (
	ErrCodeInvalidRequest = domain.ErrCodeInvalidRequest
	ErrCodeRequestFailed  = domain.ErrCodeRequestFailed
)

// Re-export error constructors and predicates
var (
	InvalidRequestError = domain.InvalidRequestError
	RequestFailedError  = domain.RequestFailedError
	CodeOf              = domain.CodeOf
	IsInvalidRequest    = domain.IsInvalidRequest
	IsRequestFailed     = domain.IsRequestFailed
)
