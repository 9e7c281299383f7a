package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jlwainwright/Auto-Claude/internal/config"
	"github.com/jlwainwright/Auto-Claude/internal/events"
	"github.com/jlwainwright/Auto-Claude/internal/override"
	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// ReasonPathExempt marks decisions allowed because the target path matched
// an allowed_paths glob.
const ReasonPathExempt = "path-exempt"

// Match is one rule that fired on an invocation.
type Match struct {
	Rule    *rule.Rule
	Matched string
}

// Decision is the outcome of validating one invocation. MatchedRules holds
// every rule that fired, including rules excluded by override tokens;
// Severity, Message, and Suggestions aggregate the matches that were not
// overridden.
type Decision struct {
	Verdict          events.Verdict
	Matches          []Match
	Severity         rule.Severity
	Message          string
	Suggestions      []string
	Overrides        []events.OverrideUse
	OverrideTokenIDs []types.TokenID
	Reason           string
}

// Allowed reports whether the invocation may proceed.
func (d *Decision) Allowed() bool {
	return d.Verdict != events.VerdictBlocked
}

// Blocked reports whether the invocation must not proceed.
func (d *Decision) Blocked() bool {
	return d.Verdict == events.VerdictBlocked
}

// MatchedRuleIDs lists the ids of every rule that fired.
func (d *Decision) MatchedRuleIDs() []string {
	out := make([]string, 0, len(d.Matches))
	for _, m := range d.Matches {
		out = append(out, m.Rule.ID)
	}
	return out
}

// Validator evaluates invocations against the merged rule set. A Validator
// is built once per session; config changes require a new one.
type Validator struct {
	cfg    *config.Config
	rules  []*rule.Rule
	tokens *override.Store
	log    *events.Logger
	logger *slog.Logger
}

// Option customizes a Validator.
type Option func(*Validator)

// WithLogger sets the structured logger for validator diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New builds a Validator from the effective config. The builtin catalog is
// merged with the config's disables, severity overrides, and custom rules;
// rejected custom rules are logged and skipped.
func New(cfg *config.Config, tokens *override.Store, log *events.Logger, opts ...Option) *Validator {
	v := &Validator{
		cfg:    cfg,
		tokens: tokens,
		log:    log,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}

	merged := rule.Merge(rule.DefaultRules(), cfg.RuleOverrides())
	v.rules = merged.Rules
	for _, rej := range merged.Rejected {
		v.logger.Warn("custom rule rejected", "rule_id", rej.RuleID, "error", rej.Err)
	}
	return v
}

// Rules returns the merged rule set in evaluation order.
func (v *Validator) Rules() []*rule.Rule {
	return v.rules
}

// Validate runs the full decision pipeline for one invocation:
//
//  1. disabled config allows everything
//  2. override tokens are spent per firing rule, excluding those rules
//  3. a target path matching allowed_paths exempts the invocation
//  4. remaining matches aggregate to the highest severity; critical and
//     high block, medium and low warn (block under strict_mode)
//
// Exactly one audit event is recorded per call. An internal fault never
// silently allows: the invocation degrades to a warned decision.
func (v *Validator) Validate(ctx context.Context, inv *Invocation) (decision *Decision) {
	defer func() {
		if r := recover(); r != nil {
			decision = v.failClosed(inv, r)
		}
	}()

	if err := inv.Validate(); err != nil {
		decision = &Decision{
			Verdict:  events.VerdictBlocked,
			Severity: rule.SeverityHigh,
			Message:  err.Error(),
			Reason:   err.Error(),
		}
		v.record(inv, decision)
		return decision
	}

	if !v.cfg.Enabled {
		decision = &Decision{Verdict: events.VerdictAllowed}
		v.record(inv, decision)
		return decision
	}

	if err := ctx.Err(); err != nil {
		decision = v.failClosed(inv, err)
		return decision
	}

	fired := v.evaluate(inv)

	remaining, overrides := v.applyOverrides(inv, fired)

	if len(fired) > 0 && len(remaining) == 0 {
		decision = &Decision{
			Verdict:          events.VerdictAllowed,
			Matches:          fired,
			Overrides:        overrides,
			OverrideTokenIDs: overrideTokenIDs(overrides),
			Reason:           "override token",
		}
		v.record(inv, decision)
		return decision
	}

	if exempt, pattern := v.pathExempt(inv); exempt {
		decision = &Decision{
			Verdict:          events.VerdictAllowed,
			Matches:          fired,
			Overrides:        overrides,
			OverrideTokenIDs: overrideTokenIDs(overrides),
			Reason:           ReasonPathExempt,
		}
		v.logger.Debug("path exempt from validation", "path", inv.Path, "pattern", pattern)
		v.record(inv, decision)
		return decision
	}

	decision = v.aggregate(fired, remaining, overrides)
	v.record(inv, decision)
	return decision
}

func overrideTokenIDs(overrides []events.OverrideUse) []types.TokenID {
	if len(overrides) == 0 {
		return nil
	}
	ids := make([]types.TokenID, 0, len(overrides))
	for _, use := range overrides {
		ids = append(ids, use.TokenID)
	}
	return ids
}

// evaluate collects every active rule that fires on the invocation.
func (v *Validator) evaluate(inv *Invocation) []Match {
	var fired []Match
	for _, r := range rule.ActiveRules(v.rules, inv.Tool) {
		for _, text := range inv.TextsFor(r.Context) {
			if r.Matches(text) {
				fired = append(fired, Match{Rule: r, Matched: r.MatchedText(text)})
				break
			}
		}
	}
	return fired
}

// applyOverrides spends one applicable token per firing rule and returns
// the matches that remain in force plus a usage record per consumed token.
// Token store failures leave the rule in force; an override must never be
// granted on error.
func (v *Validator) applyOverrides(inv *Invocation, fired []Match) ([]Match, []events.OverrideUse) {
	if v.tokens == nil || len(fired) == 0 {
		return fired, nil
	}
	var remaining []Match
	var overrides []events.OverrideUse
	for _, m := range fired {
		token, err := v.tokens.FindApplicable(m.Rule.ID, inv.Path, inv.Command)
		if err != nil {
			v.logger.Error("override lookup failed, rule stays in force",
				"rule_id", m.Rule.ID, "error", err)
			remaining = append(remaining, m)
			continue
		}
		if token == nil {
			remaining = append(remaining, m)
			continue
		}
		if err := v.tokens.Consume(token.TokenID); err != nil {
			v.logger.Error("override consume failed, rule stays in force",
				"rule_id", m.Rule.ID, "token_id", token.TokenID.String(), "error", err)
			remaining = append(remaining, m)
			continue
		}
		overrides = append(overrides, events.OverrideUse{
			TokenID: token.TokenID,
			RuleID:  m.Rule.ID,
			Scope:   token.Scope,
			Reason:  token.Reason,
		})
	}
	return remaining, overrides
}

// pathExempt reports whether the invocation's target path matches any
// allowed_paths glob. Both the path as given and a leading-slash-trimmed
// form are tried so relative globs cover absolute paths inside the project.
func (v *Validator) pathExempt(inv *Invocation) (bool, string) {
	if inv.Path == "" {
		return false, ""
	}
	candidates := []string{inv.Path, strings.TrimPrefix(inv.Path, "/")}
	for _, pattern := range v.cfg.AllowedPaths {
		for _, candidate := range candidates {
			if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
				return true, pattern
			}
		}
	}
	return false, ""
}

// aggregate folds the remaining matches into a verdict. All matches
// contribute: the severity is the maximum, and messages and suggestions
// from every match are kept.
func (v *Validator) aggregate(fired, remaining []Match, overrides []events.OverrideUse) *Decision {
	if len(remaining) == 0 {
		return &Decision{
			Verdict:          events.VerdictAllowed,
			Matches:          fired,
			Overrides:        overrides,
			OverrideTokenIDs: overrideTokenIDs(overrides),
		}
	}

	maxSeverity := remaining[0].Rule.Severity
	var messages []string
	var suggestions []string
	seenSuggestion := map[string]bool{}
	for _, m := range remaining {
		if m.Rule.Severity.Rank() > maxSeverity.Rank() {
			maxSeverity = m.Rule.Severity
		}
		messages = append(messages, fmt.Sprintf("[%s] %s", m.Rule.ID, m.Rule.Message))
		for _, s := range m.Rule.Suggestions {
			if !seenSuggestion[s] {
				seenSuggestion[s] = true
				suggestions = append(suggestions, s)
			}
		}
	}

	verdict := events.VerdictWarned
	if maxSeverity.Rank() >= rule.SeverityHigh.Rank() || v.cfg.StrictMode {
		verdict = events.VerdictBlocked
	}

	return &Decision{
		Verdict:          verdict,
		Matches:          fired,
		Severity:         maxSeverity,
		Message:          strings.Join(messages, "; "),
		Suggestions:      suggestions,
		Overrides:        overrides,
		OverrideTokenIDs: overrideTokenIDs(overrides),
		Reason:           strings.Join(messages, "; "),
	}
}

// failClosed converts a panic during validation into a warned decision.
// The fault is logged and audited; the operation is never silently allowed.
func (v *Validator) failClosed(inv *Invocation, cause any) *Decision {
	err := types.NewError(types.VALIDATOR_INTERNAL,
		fmt.Sprintf("validator fault: %v", cause))
	v.logger.Error("validator internal fault", "tool", string(inv.Tool), "error", err)

	decision := &Decision{
		Verdict:  events.VerdictWarned,
		Severity: rule.SeverityMedium,
		Message:  err.Error(),
		Reason:   err.Error(),
	}
	v.record(inv, decision)
	return decision
}

// record writes the single audit event for a decision, redacting matched
// secrets from the input summary first.
func (v *Validator) record(inv *Invocation, d *Decision) {
	if v.log == nil {
		return
	}
	summary := inv.InputSummary()
	for _, m := range d.Matches {
		if m.Rule.Category == "secret_exposure" && m.Matched != "" {
			for key, value := range summary {
				summary[key] = strings.ReplaceAll(value, m.Matched, "[REDACTED]")
			}
		}
	}

	v.log.Record(&events.Event{
		Tool:             inv.Tool,
		RuleIDs:          d.MatchedRuleIDs(),
		Decision:         d.Verdict,
		Severity:         d.Severity,
		Reason:           d.Reason,
		Overridden:       len(d.Overrides) > 0,
		Overrides:        d.Overrides,
		OverrideTokenIDs: d.OverrideTokenIDs,
		InputSummary:     events.SanitizeInput(summary),
	})
}
