package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

func TestCLIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CLIError
		expected string
	}{
		{
			name: "error without cause",
			err: &CLIError{
				Code:    ExitError,
				Message: "something went wrong",
			},
			expected: "something went wrong",
		},
		{
			name: "error with cause",
			err: &CLIError{
				Code:    ExitError,
				Message: "operation failed",
				Cause:   errors.New("underlying error"),
			},
			expected: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestCLIError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(ExitError, "wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, NewError(ExitError, "no cause").Unwrap())
}

func TestHandleError_ExitCodes(t *testing.T) {
	cmd := &cobra.Command{}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: ExitSuccess,
		},
		{
			name:     "cli error keeps its code",
			err:      NewError(ExitBlocked, "tool call blocked"),
			expected: ExitBlocked,
		},
		{
			name:     "context cancelled",
			err:      context.Canceled,
			expected: ExitCancelled,
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			expected: ExitCancelled,
		},
		{
			name:     "config parse error",
			err:      types.NewError(types.CONFIG_PARSE_FAILED, "bad json"),
			expected: ExitConfigError,
		},
		{
			name:     "schema error",
			err:      types.NewError(types.CONFIG_SCHEMA_INVALID, "enabled must be a boolean"),
			expected: ExitConfigError,
		},
		{
			name:     "other guard error",
			err:      types.NewError(types.TOKEN_NOT_FOUND, "no such token"),
			expected: ExitError,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: ExitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HandleError(cmd, tt.err))
		})
	}
}

func TestHandleError_WrappedCLIError(t *testing.T) {
	inner := NewError(ExitConfigError, "config unreadable")
	wrapped := WrapError(ExitError, "outer", inner)

	// errors.As finds the outermost CLIError first.
	assert.Equal(t, ExitError, HandleError(&cobra.Command{}, wrapped))
}
