// Package override manages bypass tokens that allow specific validation
// rules to be skipped for a bounded scope, time window, and use count.
package override

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Default token parameters applied by Generate when not overridden.
const (
	DefaultExpiryMinutes = 60
	DefaultMaxUses       = 1
)

// Scope kinds.
const (
	ScopeAll     = "all"
	scopeFile    = "file:"
	scopeCommand = "command:"
)

// Token permits invocations that a specific rule would otherwise flag.
// A token is spent per decision it influences, not per rule match.
type Token struct {
	TokenID   types.TokenID   `json:"token_id"`
	RuleID    string     `json:"rule_id"`
	Scope     string     `json:"scope"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxUses   int        `json:"max_uses"`
	UseCount  int        `json:"use_count"`
	Reason    string     `json:"reason,omitempty"`
	Creator   string     `json:"creator,omitempty"`
}

// Valid reports whether the token can still be spent at the given time.
// MaxUses of 0 means unlimited; a nil ExpiresAt never expires.
func (t *Token) Valid(now time.Time) bool {
	if t.ExpiresAt != nil && !now.Before(*t.ExpiresAt) {
		return false
	}
	if t.MaxUses > 0 && t.UseCount >= t.MaxUses {
		return false
	}
	return true
}

// Expired reports whether the token's expiry has passed.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// AppliesTo reports whether the token's scope covers a tool invocation
// described by its target path (write/edit) and command text (bash).
//
// Scope forms:
//
//	all                 covers everything
//	file:<glob>         covers write/edit targets matching the glob;
//	                    non-glob scopes also cover exact paths and
//	                    directory prefixes. For bash invocations the
//	                    glob is matched against each word of the
//	                    command, so a token for file:/tmp/x covers
//	                    "rm -rf /tmp/x".
//	command:<pattern>   covers bash commands containing the pattern as a
//	                    literal substring
func (t *Token) AppliesTo(path, command string) bool {
	switch {
	case t.Scope == "" || t.Scope == ScopeAll:
		return true
	case strings.HasPrefix(t.Scope, scopeFile):
		target := strings.TrimPrefix(t.Scope, scopeFile)
		if target == "" {
			return false
		}
		if path != "" {
			return pathInScope(target, path)
		}
		for _, word := range strings.Fields(command) {
			if pathInScope(target, word) {
				return true
			}
		}
		return false
	case strings.HasPrefix(t.Scope, scopeCommand):
		pattern := strings.TrimPrefix(t.Scope, scopeCommand)
		return pattern != "" && command != "" && strings.Contains(command, pattern)
	default:
		return false
	}
}

func pathInScope(target, path string) bool {
	if ok, err := doublestar.Match(target, path); err == nil && ok {
		return true
	}
	return path == target || strings.HasPrefix(path, strings.TrimSuffix(target, "/")+"/")
}

// FileScope formats a file-scoped token scope string.
func FileScope(glob string) string {
	return scopeFile + glob
}

// CommandScope formats a command-scoped token scope string.
func CommandScope(pattern string) string {
	return scopeCommand + pattern
}

// ParseScope validates a scope string and returns its kind ("all", "file",
// or "command") and the argument.
func ParseScope(scope string) (kind, arg string, err error) {
	switch {
	case scope == "" || scope == ScopeAll:
		return ScopeAll, "", nil
	case strings.HasPrefix(scope, scopeFile):
		arg = strings.TrimPrefix(scope, scopeFile)
		if arg == "" {
			return "", "", types.NewError(types.TOKEN_INVALID, "file scope requires a path or glob")
		}
		if !doublestar.ValidatePattern(arg) {
			return "", "", types.NewError(types.TOKEN_INVALID,
				fmt.Sprintf("file scope %q is not a valid glob", arg))
		}
		return "file", arg, nil
	case strings.HasPrefix(scope, scopeCommand):
		arg = strings.TrimPrefix(scope, scopeCommand)
		if arg == "" {
			return "", "", types.NewError(types.TOKEN_INVALID, "command scope requires a pattern")
		}
		return "command", arg, nil
	default:
		return "", "", types.NewError(types.TOKEN_INVALID,
			fmt.Sprintf("unrecognized scope %q, expected all, file:<glob>, or command:<pattern>", scope))
	}
}
