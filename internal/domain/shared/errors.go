package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by code, so wrapped copies of the
// package-level errors below satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying a cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInvalidState  = "INVALID_STATE"
	CodeConfiguration = "CONFIGURATION"
	CodeUpstream      = "UPSTREAM_UNAVAILABLE"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConfiguration = NewDomainError(CodeConfiguration, "Required configuration is missing")
	ErrUpstream      = NewDomainError(CodeUpstream, "Upstream service unavailable")
)

// ConfigError reports a missing or invalid configuration value. It is
// returned before any network call is made.
type ConfigError struct {
	// Field is the configuration key, e.g. "wms.app_token".
	Field  string
	Reason string
	Cause  error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("configuration %s %s", e.Field, e.ReasonOrDefault())
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// ReasonOrDefault returns Reason, or "is missing" when none was set.
func (e *ConfigError) ReasonOrDefault() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "is missing"
}

// Unwrap exposes ErrConfiguration and the cause, if any.
func (e *ConfigError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrConfiguration, e.Cause}
	}
	return []error{ErrConfiguration}
}

// NewConfigError creates a ConfigError for a missing field.
func NewConfigError(field string) *ConfigError {
	return &ConfigError{Field: field}
}
