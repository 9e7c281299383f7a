package override

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// TokensFileName is the token store file under the project config dir.
const TokensFileName = "override-tokens.json"

// Store persists override tokens as a single JSON array in the project
// config directory. Every mutation takes a file lock, loads the full set,
// applies the change in memory, and writes the result through a temp file
// and atomic rename, so concurrent guard processes never interleave
// partial writes.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store rooted at the given project directory.
func NewStore(projectDir string, opts ...StoreOption) *Store {
	s := &Store{
		path:   filepath.Join(projectDir, ".auto-claude", TokensFileName),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the token file location.
func (s *Store) Path() string {
	return s.path
}

// GenerateOptions tunes a new token. Zero values take the defaults: scope
// "all", one hour expiry, single use, creator "cli".
type GenerateOptions struct {
	Scope       string
	ExpiresIn   time.Duration
	NeverExpire bool
	MaxUses     *int
	Reason      string
	Creator     string
}

// Generate creates, persists, and returns a new override token for ruleID.
func (s *Store) Generate(ruleID string, opts GenerateOptions) (*Token, error) {
	if ruleID == "" {
		return nil, types.NewError(types.TOKEN_INVALID, "rule id is required")
	}
	scope := opts.Scope
	if scope == "" {
		scope = ScopeAll
	}
	if _, _, err := ParseScope(scope); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token := &Token{
		TokenID:   types.NewTokenID(),
		RuleID:    ruleID,
		Scope:     scope,
		CreatedAt: now,
		MaxUses:   DefaultMaxUses,
		Reason:    opts.Reason,
		Creator:   opts.Creator,
	}
	if token.Creator == "" {
		token.Creator = "cli"
	}
	if opts.MaxUses != nil {
		if *opts.MaxUses < 0 {
			return nil, types.NewError(types.TOKEN_INVALID, "max_uses cannot be negative")
		}
		token.MaxUses = *opts.MaxUses
	}
	if !opts.NeverExpire {
		expiresIn := opts.ExpiresIn
		if expiresIn <= 0 {
			expiresIn = DefaultExpiryMinutes * time.Minute
		}
		expiry := now.Add(expiresIn)
		token.ExpiresAt = &expiry
	}

	err := s.mutate(func(tokens []*Token) ([]*Token, error) {
		return append(tokens, token), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("override token generated",
		"token_id", token.TokenID.String(),
		"rule_id", ruleID,
		"scope", scope,
		"max_uses", token.MaxUses)
	return token, nil
}

// List returns tokens, optionally filtered by rule id. Expired and
// exhausted tokens are omitted unless includeInvalid is set.
func (s *Store) List(ruleID string, includeInvalid bool) ([]*Token, error) {
	tokens, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []*Token
	for _, t := range tokens {
		if ruleID != "" && t.RuleID != ruleID {
			continue
		}
		if !includeInvalid && !t.Valid(now) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Revoke deletes a token by id. Returns TOKEN_NOT_FOUND if no token with
// that id exists; callers treat that as non-fatal.
func (s *Store) Revoke(tokenID types.TokenID) error {
	found := false
	err := s.mutate(func(tokens []*Token) ([]*Token, error) {
		out := tokens[:0]
		for _, t := range tokens {
			if t.TokenID == tokenID {
				found = true
				continue
			}
			out = append(out, t)
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return types.NewError(types.TOKEN_NOT_FOUND,
			fmt.Sprintf("no override token with id %s", tokenID))
	}
	s.logger.Info("override token revoked", "token_id", tokenID.String())
	return nil
}

// FindApplicable returns the first valid token for ruleID whose scope
// covers the invocation's path and command, or nil when none applies.
func (s *Store) FindApplicable(ruleID, path, command string) (*Token, error) {
	tokens, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, t := range tokens {
		if t.RuleID != ruleID {
			continue
		}
		if !t.Valid(now) {
			continue
		}
		if t.AppliesTo(path, command) {
			return t, nil
		}
	}
	return nil, nil
}

// Consume spends one use of the token. A token at its use limit or past
// expiry cannot be consumed.
func (s *Store) Consume(tokenID types.TokenID) error {
	now := s.now()
	var consumed *Token
	err := s.mutate(func(tokens []*Token) ([]*Token, error) {
		for _, t := range tokens {
			if t.TokenID != tokenID {
				continue
			}
			if !t.Valid(now) {
				return nil, types.NewError(types.TOKEN_INVALID,
					fmt.Sprintf("token %s is expired or exhausted", tokenID))
			}
			t.UseCount++
			consumed = t
			return tokens, nil
		}
		return nil, types.NewError(types.TOKEN_NOT_FOUND,
			fmt.Sprintf("no override token with id %s", tokenID))
	})
	if err != nil {
		return err
	}
	s.logger.Info("override token consumed",
		"token_id", tokenID.String(),
		"rule_id", consumed.RuleID,
		"use_count", consumed.UseCount,
		"max_uses", consumed.MaxUses)
	return nil
}

// CleanupExpired removes expired and exhausted tokens, returning how many
// were dropped.
func (s *Store) CleanupExpired() (int, error) {
	now := s.now()
	removed := 0
	err := s.mutate(func(tokens []*Token) ([]*Token, error) {
		out := tokens[:0]
		for _, t := range tokens {
			if t.Valid(now) {
				out = append(out, t)
			} else {
				removed++
			}
		}
		return out, nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired override tokens removed", "count", removed)
	}
	return removed, nil
}

// mutate runs fn over the full token set under the file lock and persists
// the result atomically.
func (s *Store) mutate(fn func([]*Token) ([]*Token, error)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return types.WrapError(types.TOKEN_STORE_IO, "cannot create config directory", err)
	}
	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return types.NewRetryableError(types.TOKEN_STORE_IO,
			fmt.Sprintf("cannot lock token store: %v", err))
	}
	defer lock.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	updated, err := fn(tokens)
	if err != nil {
		return err
	}
	return s.persist(updated)
}

// loadLocked reads the token set under a shared lock.
func (s *Store) loadLocked() ([]*Token, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}
	lock := flock.New(s.lockPath())
	if err := lock.RLock(); err != nil {
		return nil, types.NewRetryableError(types.TOKEN_STORE_IO,
			fmt.Sprintf("cannot lock token store: %v", err))
	}
	defer lock.Unlock()
	return s.load()
}

func (s *Store) load() ([]*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.WrapError(types.TOKEN_STORE_IO, "cannot read token store", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var tokens []*Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, types.WrapError(types.TOKEN_STORE_IO, "token store is corrupt", err)
	}
	return tokens, nil
}

// persist writes the token set through a temp file in the same directory
// followed by a rename, so readers never observe a partial file.
func (s *Store) persist(tokens []*Token) error {
	if tokens == nil {
		tokens = []*Token{}
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return types.WrapError(types.TOKEN_STORE_IO, "cannot encode token store", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.WrapError(types.TOKEN_STORE_IO, "cannot create config directory", err)
	}
	tmp, err := os.CreateTemp(dir, TokensFileName+".tmp-*")
	if err != nil {
		return types.WrapError(types.TOKEN_STORE_IO, "cannot create temp token file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.WrapError(types.TOKEN_STORE_IO, "cannot write temp token file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.WrapError(types.TOKEN_STORE_IO, "cannot close temp token file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return types.WrapError(types.TOKEN_STORE_IO, "cannot replace token store", err)
	}
	return nil
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}
