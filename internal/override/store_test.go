package override

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

func testStore(t *testing.T, now *time.Time) *Store {
	t.Helper()
	return NewStore(t.TempDir(), WithClock(func() time.Time { return *now }))
}

func TestToken_Valid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		token Token
		valid bool
	}{
		{"fresh single use", Token{ExpiresAt: &future, MaxUses: 1, UseCount: 0}, true},
		{"exhausted", Token{ExpiresAt: &future, MaxUses: 1, UseCount: 1}, false},
		{"unlimited uses", Token{ExpiresAt: &future, MaxUses: 0, UseCount: 100}, true},
		{"expired", Token{ExpiresAt: &past, MaxUses: 0}, false},
		{"expires exactly now", Token{ExpiresAt: &now, MaxUses: 0}, false},
		{"never expires", Token{ExpiresAt: nil, MaxUses: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.token.Valid(now))
		})
	}
}

func TestToken_AppliesTo(t *testing.T) {
	tests := []struct {
		name    string
		scope   string
		path    string
		command string
		applies bool
	}{
		{"all scope", "all", "/any/path", "any command", true},
		{"empty scope", "", "", "", true},
		{"file glob match", "file:src/**/*.go", "src/internal/main.go", "", true},
		{"file glob miss", "file:src/**/*.go", "docs/readme.md", "", false},
		{"file exact", "file:/etc/hosts", "/etc/hosts", "", true},
		{"file prefix", "file:/opt/app", "/opt/app/config.yml", "", true},
		{"file no path", "file:src/*.go", "", "", false},
		{"file scope bash word", "file:/tmp/x", "", "rm -rf /tmp/x", true},
		{"file scope bash prefix", "file:/tmp/x", "", "rm -rf /tmp/x/cache", true},
		{"file scope bash miss", "file:/tmp/x", "", "rm -rf /etc", false},
		{"file glob bash word", "file:/tmp/**", "", "cat /tmp/build/out.log", true},
		{"command substring", "command:rm -rf build", "", "cd /tmp && rm -rf build", true},
		{"command miss", "command:rm -rf build", "", "ls -la", false},
		{"unknown scope", "host:example.com", "/p", "c", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Token{Scope: tt.scope}
			assert.Equal(t, tt.applies, tok.AppliesTo(tt.path, tt.command))
		})
	}
}

func TestParseScope(t *testing.T) {
	kind, arg, err := ParseScope("file:src/**")
	require.NoError(t, err)
	assert.Equal(t, "file", kind)
	assert.Equal(t, "src/**", arg)

	kind, _, err = ParseScope("all")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, kind)

	_, _, err = ParseScope("file:")
	assert.Error(t, err)

	_, _, err = ParseScope("command:")
	assert.Error(t, err)

	_, _, err = ParseScope("bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOKEN_INVALID, ""))
}

func TestStore_GenerateDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := testStore(t, &now)

	tok, err := store.Generate("bash-rm-rf-root", GenerateOptions{Reason: "cleanup task"})
	require.NoError(t, err)

	_, err = types.ParseTokenID(tok.TokenID.String())
	assert.NoError(t, err)
	assert.Equal(t, "bash-rm-rf-root", tok.RuleID)
	assert.Equal(t, ScopeAll, tok.Scope)
	assert.Equal(t, DefaultMaxUses, tok.MaxUses)
	assert.Equal(t, "cli", tok.Creator)
	require.NotNil(t, tok.ExpiresAt)
	assert.Equal(t, now.Add(DefaultExpiryMinutes*time.Minute), *tok.ExpiresAt)
}

func TestStore_GenerateNeverExpireUnlimited(t *testing.T) {
	now := time.Now().UTC()
	store := testStore(t, &now)

	unlimited := 0
	tok, err := store.Generate("bash-chmod-777", GenerateOptions{
		NeverExpire: true,
		MaxUses:     &unlimited,
	})
	require.NoError(t, err)
	assert.Nil(t, tok.ExpiresAt)
	assert.Equal(t, 0, tok.MaxUses)
	assert.True(t, tok.Valid(now.Add(24*365*time.Hour)))
}

func TestStore_GenerateRejectsBadInput(t *testing.T) {
	now := time.Now().UTC()
	store := testStore(t, &now)

	_, err := store.Generate("", GenerateOptions{})
	assert.Error(t, err)

	_, err = store.Generate("r", GenerateOptions{Scope: "bogus-scope"})
	assert.Error(t, err)

	negative := -1
	_, err = store.Generate("r", GenerateOptions{MaxUses: &negative})
	assert.Error(t, err)
}

func TestStore_FileFormat(t *testing.T) {
	now := time.Now().UTC()
	store := testStore(t, &now)

	_, err := store.Generate("rule-a", GenerateOptions{NeverExpire: true})
	require.NoError(t, err)
	_, err = store.Generate("rule-b", GenerateOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	// The store is one JSON array of token objects.
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Contains(t, raw[0], "token_id")
	assert.Nil(t, raw[0]["expires_at"])
	assert.NotNil(t, raw[1]["expires_at"])
}

func TestStore_ListAndRevoke(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := testStore(t, &now)

	a, err := store.Generate("rule-a", GenerateOptions{})
	require.NoError(t, err)
	_, err = store.Generate("rule-b", GenerateOptions{})
	require.NoError(t, err)

	all, err := store.List("", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyA, err := store.List("rule-a", false)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, a.TokenID, onlyA[0].TokenID)

	require.NoError(t, store.Revoke(a.TokenID))
	remaining, err := store.List("", false)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	err = store.Revoke(a.TokenID)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOKEN_NOT_FOUND, ""))
}

func TestStore_ListFiltersInvalid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := testStore(t, &now)

	tok, err := store.Generate("rule-a", GenerateOptions{ExpiresIn: 10 * time.Minute})
	require.NoError(t, err)

	now = now.Add(time.Hour)

	valid, err := store.List("", false)
	require.NoError(t, err)
	assert.Empty(t, valid)

	withInvalid, err := store.List("", true)
	require.NoError(t, err)
	require.Len(t, withInvalid, 1)
	assert.Equal(t, tok.TokenID, withInvalid[0].TokenID)
}

func TestStore_ConsumeLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := testStore(t, &now)

	two := 2
	tok, err := store.Generate("rule-a", GenerateOptions{MaxUses: &two})
	require.NoError(t, err)

	require.NoError(t, store.Consume(tok.TokenID))
	require.NoError(t, store.Consume(tok.TokenID))

	err = store.Consume(tok.TokenID)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOKEN_INVALID, ""))

	err = store.Consume(types.NewTokenID())
	assert.ErrorIs(t, err, types.NewError(types.TOKEN_NOT_FOUND, ""))
}

func TestStore_FindApplicable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := testStore(t, &now)

	scoped, err := store.Generate("bash-rm-rf-root", GenerateOptions{
		Scope: CommandScope("rm -rf /tmp/scratch"),
	})
	require.NoError(t, err)

	found, err := store.FindApplicable("bash-rm-rf-root", "", "rm -rf /tmp/scratch && echo done")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, scoped.TokenID, found.TokenID)

	miss, err := store.FindApplicable("bash-rm-rf-root", "", "rm -rf /etc")
	require.NoError(t, err)
	assert.Nil(t, miss)

	otherRule, err := store.FindApplicable("bash-chmod-777", "", "rm -rf /tmp/scratch")
	require.NoError(t, err)
	assert.Nil(t, otherRule)

	// Spent tokens stop applying.
	require.NoError(t, store.Consume(scoped.TokenID))
	spent, err := store.FindApplicable("bash-rm-rf-root", "", "rm -rf /tmp/scratch")
	require.NoError(t, err)
	assert.Nil(t, spent)
}

func TestStore_CleanupExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := testStore(t, &now)

	_, err := store.Generate("rule-a", GenerateOptions{ExpiresIn: 5 * time.Minute})
	require.NoError(t, err)
	keep, err := store.Generate("rule-b", GenerateOptions{NeverExpire: true})
	require.NoError(t, err)

	now = now.Add(time.Hour)

	removed, err := store.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	remaining, err := store.List("", true)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.TokenID, remaining[0].TokenID)
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	now := time.Now().UTC()
	store := testStore(t, &now)

	tokens, err := store.List("", true)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	found, err := store.FindApplicable("any", "", "")
	require.NoError(t, err)
	assert.Nil(t, found)
}
