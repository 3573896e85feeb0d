package fcuid

import (
	"fmt"
	"net/http"
)

// Validation error codes as constants
const (
	ErrorCodeTypeMismatch      = "type_mismatch"
	ErrorCodeInvalidFormat     = "invalid_format"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrorCodeAccessDenied      = "access_denied"
)

// Warning codes for advisory conditions. Warnings never fail a validation.
const (
	WarningCodeSuspiciousPattern     = "suspicious_pattern"
	WarningCodePotentialTimingAttack = "potential_timing_attack"
)

// ValidationError represents a fatal validation failure
type ValidationError struct {
	Code        string `json:"code"`        // Error code (e.g., "invalid_format", "rate_limit_exceeded")
	Description string `json:"description"` // Human-readable error description
	Status      int    `json:"-"`           // HTTP status code for the serve surface
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewValidationError creates a new validation error
func NewValidationError(code, description string, status int) *ValidationError {
	return &ValidationError{
		Code:        code,
		Description: description,
		Status:      status,
	}
}

// Common validation errors as reusable instances
var (
	// ErrTypeMismatch indicates the candidate identifier is not a usable string
	ErrTypeMismatch = func(desc string) *ValidationError {
		return NewValidationError(ErrorCodeTypeMismatch, desc, http.StatusBadRequest)
	}

	// ErrInvalidFormat indicates the identifier matches neither accepted shape
	ErrInvalidFormat = func(desc string) *ValidationError {
		return NewValidationError(ErrorCodeInvalidFormat, desc, http.StatusBadRequest)
	}

	// ErrRateLimitExceeded indicates the requester exhausted its window quota
	ErrRateLimitExceeded = func(desc string) *ValidationError {
		return NewValidationError(ErrorCodeRateLimitExceeded, desc, http.StatusTooManyRequests)
	}

	// ErrAccessDenied indicates the caller lacks authentication for a sensitive lookup
	ErrAccessDenied = func(desc string) *ValidationError {
		return NewValidationError(ErrorCodeAccessDenied, desc, http.StatusForbidden)
	}
)

// Warning represents an advisory finding surfaced alongside a validation
// result without affecting its outcome.
type Warning struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NewWarning creates a new advisory warning
func NewWarning(code, description string) Warning {
	return Warning{Code: code, Description: description}
}
