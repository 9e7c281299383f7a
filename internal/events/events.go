// Package events records validation decisions for the running session and
// derives the statistics used by audit reports.
package events

import (
	"strings"
	"time"

	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Verdict is the outcome of validating one tool invocation.
type Verdict string

const (
	VerdictAllowed Verdict = "allowed"
	VerdictWarned  Verdict = "warned"
	VerdictBlocked Verdict = "blocked"
)

// OverrideUse records one override token spent during a decision, with the
// scope and reason the token carried when it was created.
type OverrideUse struct {
	TokenID types.TokenID `json:"token_id"`
	RuleID  string        `json:"rule_id"`
	Scope   string        `json:"scope"`
	Reason  string        `json:"reason,omitempty"`
}

// Event is one audit log entry. Exactly one event is recorded per
// validation decision, carrying every rule that matched.
type Event struct {
	Timestamp        time.Time         `json:"timestamp"`
	Tool             rule.ToolType     `json:"tool"`
	RuleIDs          []string          `json:"rule_ids,omitempty"`
	Decision         Verdict           `json:"decision"`
	Severity         rule.Severity     `json:"severity,omitempty"`
	Reason           string            `json:"reason"`
	Overridden       bool              `json:"was_overridden"`
	Overrides        []OverrideUse     `json:"overrides,omitempty"`
	OverrideTokenIDs []types.TokenID   `json:"override_token_ids,omitempty"`
	InputSummary     map[string]string `json:"tool_input_summary,omitempty"`
}

// PrimaryRuleID returns the first matched rule id, or "" when none matched.
func (e *Event) PrimaryRuleID() string {
	if len(e.RuleIDs) == 0 {
		return ""
	}
	return e.RuleIDs[0]
}

const (
	maxSummaryValueLen = 200
	redactedValue      = "[REDACTED]"
	truncatedSuffix    = "... [TRUNCATED]"
)

var sensitiveKeyFragments = []string{
	"api_key", "apikey", "secret", "password", "token",
	"authorization", "auth", "credential", "private_key",
}

// SanitizeInput prepares tool input for the audit log: values under
// sensitive-looking keys are redacted and long values are truncated.
func SanitizeInput(input map[string]string) map[string]string {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		if isSensitiveKey(key) {
			out[key] = redactedValue
			continue
		}
		if len(value) > maxSummaryValueLen {
			value = value[:maxSummaryValueLen] + truncatedSuffix
		}
		out[key] = value
	}
	return out
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
