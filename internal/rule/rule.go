// Package rule defines validation rules for tool invocations and the
// builtin catalog of dangerous operation detectors.
package rule

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Severity classifies how dangerous a matched operation is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordering of severities, low (0) through critical (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	return s.Rank() >= 0
}

// Priority orders rule evaluation, P0 (most urgent) through P3.
type Priority string

const (
	PriorityP0 Priority = "p0"
	PriorityP1 Priority = "p1"
	PriorityP2 Priority = "p2"
	PriorityP3 Priority = "p3"
)

// Rank returns the ordering of priorities, p0 (0) through p3 (3).
func (p Priority) Rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	case PriorityP3:
		return 3
	default:
		return -1
	}
}

// IsValid reports whether p is a recognized priority.
func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// ToolType identifies the kind of tool invocation a rule applies to.
type ToolType string

const (
	ToolBash      ToolType = "bash"
	ToolWrite     ToolType = "write"
	ToolEdit      ToolType = "edit"
	ToolWebFetch  ToolType = "web_fetch"
	ToolWebSearch ToolType = "web_search"
)

// AllToolTypes lists every recognized tool type.
var AllToolTypes = []ToolType{ToolBash, ToolWrite, ToolEdit, ToolWebFetch, ToolWebSearch}

// IsValid reports whether t is a recognized tool type.
func (t ToolType) IsValid() bool {
	switch t {
	case ToolBash, ToolWrite, ToolEdit, ToolWebFetch, ToolWebSearch:
		return true
	}
	return false
}

// Context selects which part of an invocation a rule matches against.
type Context string

const (
	ContextCommand     Context = "command"
	ContextFileContent Context = "file_content"
	ContextFilePath    Context = "file_path"
	ContextAll         Context = "all"
)

// IsValid reports whether c is a recognized matching context.
func (c Context) IsValid() bool {
	switch c {
	case ContextCommand, ContextFileContent, ContextFilePath, ContextAll:
		return true
	}
	return false
}

// PatternType selects how a rule pattern is interpreted.
type PatternType string

const (
	PatternRegex   PatternType = "regex"
	PatternLiteral PatternType = "literal"
)

const (
	// MaxSuggestions caps the remediation hints a single rule may carry.
	MaxSuggestions = 3

	// MaxPatternLength caps rule pattern size.
	MaxPatternLength = 2048
)

var ruleIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Rule describes a single dangerous operation detector. Rules are matched
// against the invocation field selected by Context; a match contributes the
// rule's severity to the final decision.
type Rule struct {
	ID          string      `json:"rule_id" yaml:"rule_id" validate:"required"`
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Pattern     string      `json:"pattern" yaml:"pattern" validate:"required"`
	PatternType PatternType `json:"pattern_type" yaml:"pattern_type" validate:"required,oneof=regex literal"`
	Severity    Severity    `json:"severity" yaml:"severity" validate:"required,oneof=low medium high critical"`
	Priority    Priority    `json:"priority" yaml:"priority" validate:"required,oneof=p0 p1 p2 p3"`
	ToolTypes   []ToolType  `json:"tool_types" yaml:"tool_types" validate:"required,min=1,dive,oneof=bash write edit web_fetch web_search"`
	Context     Context     `json:"context" yaml:"context" validate:"required,oneof=command file_content file_path all"`
	Message     string      `json:"message" yaml:"message" validate:"required"`
	Suggestions []string    `json:"suggestions,omitempty" yaml:"suggestions,omitempty" validate:"max=3"`
	Category    string      `json:"category" yaml:"category"`
	Enabled     bool        `json:"enabled" yaml:"enabled"`

	compiled *regexp.Regexp
}

// UnmarshalJSON decodes a rule from a config file. A rule that omits
// "enabled" is enabled; only an explicit false disables it.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var aux struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Rule(decoded)
	r.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML configs.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	type plain Rule
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	var aux struct {
		Enabled *bool `yaml:"enabled"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*r = Rule(decoded)
	r.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

// Validate checks the rule's structural invariants and compiles regex
// patterns. It returns a CUSTOM_RULE_INVALID error describing the first
// violation found.
func (r *Rule) Validate() error {
	if !ruleIDPattern.MatchString(r.ID) {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule_id %q must match [A-Za-z0-9_-]+", r.ID))
	}
	if r.Name == "" {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: name is required", r.ID))
	}
	if r.Message == "" {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: message is required", r.ID))
	}
	if r.PatternType != PatternRegex && r.PatternType != PatternLiteral {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: pattern_type must be regex or literal, got %q", r.ID, r.PatternType))
	}
	if !r.Severity.IsValid() {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: invalid severity %q", r.ID, r.Severity))
	}
	if !r.Priority.IsValid() {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: invalid priority %q", r.ID, r.Priority))
	}
	if len(r.ToolTypes) == 0 {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: at least one tool type is required", r.ID))
	}
	for _, t := range r.ToolTypes {
		if !t.IsValid() {
			return types.NewError(types.CUSTOM_RULE_INVALID,
				fmt.Sprintf("rule %s: invalid tool type %q", r.ID, t))
		}
	}
	if !r.Context.IsValid() {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: invalid context %q", r.ID, r.Context))
	}
	if len(r.Suggestions) > MaxSuggestions {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("rule %s: at most %d suggestions allowed, got %d", r.ID, MaxSuggestions, len(r.Suggestions)))
	}
	if err := CheckPatternSafety(r.Pattern, r.PatternType); err != nil {
		return err
	}
	if r.PatternType == PatternRegex {
		compiled, err := regexp.Compile(r.Pattern)
		if err != nil {
			return types.WrapError(types.PATTERN_COMPILE_FAILED,
				fmt.Sprintf("rule %s: pattern does not compile", r.ID), err)
		}
		r.compiled = compiled
	}
	return nil
}

// AppliesTo reports whether the rule is enabled for the given tool type.
func (r *Rule) AppliesTo(tool ToolType) bool {
	if !r.Enabled {
		return false
	}
	for _, t := range r.ToolTypes {
		if t == tool {
			return true
		}
	}
	return false
}

// Matches reports whether the rule's pattern fires on the given text.
// Literal patterns match as case-insensitive substrings; regex patterns
// search anywhere in the text. A regex rule whose pattern failed to compile
// never matches.
func (r *Rule) Matches(text string) bool {
	if text == "" {
		return false
	}
	switch r.PatternType {
	case PatternLiteral:
		return strings.Contains(strings.ToLower(text), strings.ToLower(r.Pattern))
	case PatternRegex:
		if r.compiled == nil {
			compiled, err := regexp.Compile(r.Pattern)
			if err != nil {
				return false
			}
			r.compiled = compiled
		}
		return r.compiled.MatchString(text)
	}
	return false
}

// MatchedText returns the substring of text that fired the rule, or "" when
// the rule does not match. Used for snippet redaction in audit events.
func (r *Rule) MatchedText(text string) string {
	if text == "" {
		return ""
	}
	switch r.PatternType {
	case PatternLiteral:
		lower := strings.ToLower(text)
		idx := strings.Index(lower, strings.ToLower(r.Pattern))
		if idx < 0 {
			return ""
		}
		return text[idx : idx+len(r.Pattern)]
	case PatternRegex:
		if r.compiled == nil {
			compiled, err := regexp.Compile(r.Pattern)
			if err != nil {
				return ""
			}
			r.compiled = compiled
		}
		return r.compiled.FindString(text)
	}
	return ""
}

// Clone returns a deep copy of the rule, including tool types and
// suggestions, so per-project overrides never mutate the builtin catalog.
func (r *Rule) Clone() *Rule {
	clone := *r
	clone.ToolTypes = append([]ToolType(nil), r.ToolTypes...)
	clone.Suggestions = append([]string(nil), r.Suggestions...)
	return &clone
}
