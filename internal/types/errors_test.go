package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GuardError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewError(CONFIG_PARSE_FAILED, "failed to parse config"),
			expected: "[CONFIG_PARSE_FAILED] failed to parse config",
		},
		{
			name:     "with cause",
			err:      WrapError(TOKEN_STORE_IO, "failed to write token file", fmt.Errorf("disk full")),
			expected: "[TOKEN_STORE_IO] failed to write token file: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestGuardError_Is(t *testing.T) {
	err := NewError(TOKEN_NOT_FOUND, "token abc not found")

	assert.True(t, errors.Is(err, NewError(TOKEN_NOT_FOUND, "different message")))
	assert.False(t, errors.Is(err, NewError(TOKEN_INVALID, "token abc not found")))
	assert.False(t, errors.Is(err, fmt.Errorf("plain error")))
}

func TestGuardError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := WrapError(VALIDATOR_INTERNAL, "validation panicked", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestNewRetryableError(t *testing.T) {
	err := NewRetryableError(TOKEN_STORE_IO, "lock contention")
	assert.True(t, err.Retryable)

	err = NewError(TOKEN_STORE_IO, "corrupt file")
	assert.False(t, err.Retryable)
}

func TestTokenID_Lifecycle(t *testing.T) {
	id := NewTokenID()

	parsed, err := ParseTokenID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	// Uppercase input canonicalizes to the stored form.
	upper, err := ParseTokenID(strings.ToUpper(id.String()))
	require.NoError(t, err)
	assert.Equal(t, id, upper)

	_, err = ParseTokenID("not-a-uuid")
	assert.Error(t, err)
	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, TOKEN_INVALID, guardErr.Code)

	_, err = ParseTokenID("")
	assert.Error(t, err)
}

func TestTokenID_UnmarshalJSON(t *testing.T) {
	var id TokenID
	require.NoError(t, json.Unmarshal([]byte(`"f1db5c35-36a1-44cf-a2b6-3eb16bd988d6"`), &id))
	assert.Equal(t, TokenID("f1db5c35-36a1-44cf-a2b6-3eb16bd988d6"), id)

	assert.Error(t, json.Unmarshal([]byte(`"garbage"`), &id))
}
