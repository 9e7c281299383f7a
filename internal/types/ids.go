package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TokenID identifies an override token. The value is a canonical RFC 4122
// UUID string; the zero value is invalid and never matches a stored token.
type TokenID string

// NewTokenID returns a random token id.
func NewTokenID() TokenID {
	return TokenID(uuid.NewString())
}

// ParseTokenID normalizes and validates a caller-supplied token id, such
// as a revoke argument. Uppercase input is canonicalized.
func ParseTokenID(s string) (TokenID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", NewError(TOKEN_INVALID, fmt.Sprintf("invalid token id %q: %v", s, err))
	}
	return TokenID(u.String()), nil
}

// String returns the string representation of the token id.
func (id TokenID) String() string {
	return string(id)
}

// UnmarshalJSON validates ids read from the token store so a corrupted
// store file surfaces as an error instead of as unspendable tokens.
func (id *TokenID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTokenID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
