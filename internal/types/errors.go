package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for validation guard errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_PARSE_FAILED   ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_SCHEMA_INVALID ErrorCode = "CONFIG_SCHEMA_INVALID"
)

// Rule error codes
const (
	CUSTOM_RULE_INVALID    ErrorCode = "CUSTOM_RULE_INVALID"
	PATTERN_COMPILE_FAILED ErrorCode = "PATTERN_COMPILE_FAILED"
)

// Override token error codes
const (
	TOKEN_NOT_FOUND ErrorCode = "TOKEN_NOT_FOUND"
	TOKEN_STORE_IO  ErrorCode = "TOKEN_STORE_IO"
	TOKEN_INVALID   ErrorCode = "TOKEN_INVALID"
)

// Validator error codes
const (
	VALIDATOR_INTERNAL ErrorCode = "VALIDATOR_INTERNAL"
	INVOCATION_INVALID ErrorCode = "INVOCATION_INVALID"
)

// Audit log error codes
const (
	EVENT_LOG_IO ErrorCode = "EVENT_LOG_IO"
)

// GuardError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type GuardError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *GuardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *GuardError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a GuardError with the same Code.
func (e *GuardError) Is(target error) bool {
	var guardErr *GuardError
	if errors.As(target, &guardErr) {
		return e.Code == guardErr.Code
	}
	return false
}

// NewError creates a new non-retryable GuardError with the given code and message.
func NewError(code ErrorCode, message string) *GuardError {
	return &GuardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable GuardError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., contended file locks).
func NewRetryableError(code ErrorCode, message string) *GuardError {
	return &GuardError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable GuardError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *GuardError {
	return &GuardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}
