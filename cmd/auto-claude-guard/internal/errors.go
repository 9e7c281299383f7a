// Package internal holds CLI plumbing shared by the auto-claude-guard
// commands: exit codes, error rendering, and verbosity handling.
package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitBlocked indicates a checked operation was blocked
	ExitBlocked = 2
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
)

// CLIError represents a CLI-specific error with an exit code.
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewError creates a CLIError with the given exit code and message.
func NewError(code int, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapError creates a CLIError wrapping an existing error.
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// HandleError prints the error and maps it to an exit code. Cancellation,
// config errors, and guard errors each get their own code so scripts can
// tell the outcomes apart.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cliErr.Error())
		return cliErr.Code
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintln(os.Stderr, "Operation cancelled")
		return ExitCancelled
	}

	var guardErr *types.GuardError
	if errors.As(err, &guardErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", guardErr.Error())
		switch guardErr.Code {
		case types.CONFIG_PARSE_FAILED, types.CONFIG_SCHEMA_INVALID:
			return ExitConfigError
		default:
			return ExitError
		}
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitError
}
