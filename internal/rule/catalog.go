package rule

import (
	"fmt"
	"sort"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Overrides carries the per-project adjustments applied on top of the
// builtin catalog when assembling the active rule set.
type Overrides struct {
	// DisabledRules lists rule ids to mark disabled.
	DisabledRules []string
	// SeverityOverrides maps rule id to a replacement severity. Only the
	// severity changes; pattern, priority, and message are untouched.
	SeverityOverrides map[string]Severity
	// CustomRules are appended to the catalog. A custom rule whose id
	// collides with a builtin replaces the builtin entirely.
	CustomRules []*Rule
}

// MergeResult is a fully assembled rule set together with the custom rules
// that were rejected during validation. A rejected custom rule never
// invalidates the rest of the set.
type MergeResult struct {
	Rules    []*Rule
	Rejected []RejectedRule
}

// RejectedRule records a custom rule dropped during merge and why.
type RejectedRule struct {
	RuleID string
	Err    error
}

// Merge builds the active catalog: builtins with disables and severity
// overrides applied, plus validated custom rules. Custom rules that fail
// validation are dropped individually and reported in Rejected. The result
// is sorted by priority, category, then id so evaluation order and reports
// are deterministic.
func Merge(builtins []*Rule, ov Overrides) MergeResult {
	byID := make(map[string]*Rule, len(builtins))
	order := make([]string, 0, len(builtins))
	for _, r := range builtins {
		byID[r.ID] = r
		order = append(order, r.ID)
	}

	var rejected []RejectedRule
	for _, custom := range ov.CustomRules {
		if custom == nil {
			continue
		}
		c := custom.Clone()
		if err := c.Validate(); err != nil {
			rejected = append(rejected, RejectedRule{RuleID: custom.ID, Err: err})
			continue
		}
		if _, exists := byID[c.ID]; !exists {
			order = append(order, c.ID)
		}
		byID[c.ID] = c
	}

	disabled := make(map[string]bool, len(ov.DisabledRules))
	for _, id := range ov.DisabledRules {
		disabled[id] = true
	}

	rules := make([]*Rule, 0, len(order))
	for _, id := range order {
		r := byID[id]
		if disabled[id] {
			r.Enabled = false
		}
		if sev, ok := ov.SeverityOverrides[id]; ok {
			if !sev.IsValid() {
				rejected = append(rejected, RejectedRule{
					RuleID: id,
					Err: types.NewError(types.CONFIG_SCHEMA_INVALID,
						fmt.Sprintf("severity override for %s: invalid severity %q", id, sev)),
				})
			} else {
				r.Severity = sev
			}
		}
		rules = append(rules, r)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority.Rank() != rules[j].Priority.Rank() {
			return rules[i].Priority.Rank() < rules[j].Priority.Rank()
		}
		if rules[i].Category != rules[j].Category {
			return rules[i].Category < rules[j].Category
		}
		return rules[i].ID < rules[j].ID
	})

	return MergeResult{Rules: rules, Rejected: rejected}
}

// ActiveRules filters a merged set down to the enabled rules that apply to
// the given tool type, preserving merge order.
func ActiveRules(rules []*Rule, tool ToolType) []*Rule {
	var out []*Rule
	for _, r := range rules {
		if r.AppliesTo(tool) {
			out = append(out, r)
		}
	}
	return out
}
