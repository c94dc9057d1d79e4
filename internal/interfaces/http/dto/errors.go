package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain codes pass through unchanged.
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenRevoked       = "TOKEN_REVOKED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeIntegration        = "INTEGRATION_FAILED"
	ErrCodeConcurrency        = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps exact error codes to HTTP status codes. Codes not
// listed fall back to the prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	"ALREADY_EXISTS":          http.StatusBadRequest,
	"INSUFFICIENT_STOCK":      http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConcurrency:        http.StatusConflict,
	ErrCodeDuplicateRequest:   http.StatusConflict,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeIntegration:        http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for an error code.
// TOKEN_* is 401, INVALID_* is 400, anything unknown is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
