// Package guardrail is the hook-facing surface of the validation guard.
// It assembles the config, override store, event log, and validator for a
// project, translates SDK tool calls into invocations, and renders
// decisions in the PreToolUse hook response format.
package guardrail

import (
	"context"
	"log/slog"

	"github.com/jlwainwright/Auto-Claude/internal/config"
	"github.com/jlwainwright/Auto-Claude/internal/events"
	"github.com/jlwainwright/Auto-Claude/internal/override"
	"github.com/jlwainwright/Auto-Claude/internal/report"
	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/validation"
)

// toolNames maps SDK tool names to tool types.
var toolNames = map[string]rule.ToolType{
	"Bash":      rule.ToolBash,
	"Write":     rule.ToolWrite,
	"Edit":      rule.ToolEdit,
	"WebFetch":  rule.ToolWebFetch,
	"WebSearch": rule.ToolWebSearch,
}

// HookResponse is the PreToolUse hook verdict. A zero Decision allows the
// call; "block" stops it with Reason explaining why.
type HookResponse struct {
	Decision    string   `json:"decision,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	RuleID      string   `json:"rule_id,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Warning     string   `json:"warning,omitempty"`
}

// Blocked reports whether the hook response stops the tool call.
func (h *HookResponse) Blocked() bool {
	return h.Decision == "block"
}

// Guard validates tool calls for one project. Build one per session with
// New and reuse it for every call; the config is loaded once.
type Guard struct {
	projectDir  string
	cfg         *config.Config
	cfgWarnings []config.LoadWarning
	store       *override.Store
	log         *events.Logger
	validator   *validation.Validator
	logger      *slog.Logger
}

// Option customizes a Guard.
type Option func(*Guard)

// WithLogger sets the structured logger shared by the guard's components.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithConfig bypasses config loading, used in tests.
func WithConfig(cfg *config.Config) Option {
	return func(g *Guard) {
		g.cfg = cfg
	}
}

// New assembles a Guard for projectDir. Config problems are recorded, not
// fatal: the guard always comes up, on defaults if necessary.
func New(projectDir string, opts ...Option) *Guard {
	g := &Guard{
		projectDir: projectDir,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.cfg == nil {
		g.cfg, g.cfgWarnings = config.LoadConfig(projectDir)
	}
	g.store = override.NewStore(projectDir, override.WithLogger(g.logger))
	g.log = events.NewLogger(
		events.WithSlog(g.logger),
		events.WithLogAllValidations(g.cfg.LogAllValidations),
	)
	g.validator = validation.New(g.cfg, g.store, g.log,
		validation.WithLogger(g.logger))
	return g
}

// ValidateToolUse checks one SDK tool call. Unsupported tool names are
// allowed untouched; the guard only rules on the tools it knows.
func (g *Guard) ValidateToolUse(ctx context.Context, toolName string, input map[string]string) *HookResponse {
	tool, ok := toolNames[toolName]
	if !ok {
		return &HookResponse{}
	}

	inv := &validation.Invocation{Tool: tool}
	switch tool {
	case rule.ToolBash:
		inv.Command = input["command"]
	case rule.ToolWrite:
		inv.Path = input["file_path"]
		inv.Content = input["content"]
	case rule.ToolEdit:
		inv.Path = input["file_path"]
		inv.Content = input["new_string"]
	case rule.ToolWebFetch:
		inv.URL = input["url"]
	case rule.ToolWebSearch:
		inv.Query = input["query"]
	}

	return g.respond(g.validator.Validate(ctx, inv))
}

// Validate checks an already-built invocation.
func (g *Guard) Validate(ctx context.Context, inv *validation.Invocation) *validation.Decision {
	return g.validator.Validate(ctx, inv)
}

func (g *Guard) respond(d *validation.Decision) *HookResponse {
	switch d.Verdict {
	case events.VerdictBlocked:
		resp := &HookResponse{
			Decision:    "block",
			Reason:      d.Message,
			Suggestions: d.Suggestions,
		}
		if ids := d.MatchedRuleIDs(); len(ids) > 0 {
			resp.RuleID = ids[0]
		}
		return resp
	case events.VerdictWarned:
		return &HookResponse{Warning: d.Message}
	default:
		return &HookResponse{}
	}
}

// Config returns the effective configuration.
func (g *Guard) Config() *config.Config {
	return g.cfg
}

// ConfigWarnings returns the problems recorded while loading the config.
func (g *Guard) ConfigWarnings() []config.LoadWarning {
	return g.cfgWarnings
}

// Rules returns the merged rule set in evaluation order.
func (g *Guard) Rules() []*rule.Rule {
	return g.validator.Rules()
}

// Tokens returns the project's override token store.
func (g *Guard) Tokens() *override.Store {
	return g.store
}

// EventLog returns the session event log.
func (g *Guard) EventLog() *events.Logger {
	return g.log
}

// Report renders the session's audit report as markdown.
func (g *Guard) Report() string {
	return report.NewGenerator(g.log, report.WithProjectDir(g.projectDir)).Markdown()
}

// SaveReport writes the session's audit report to path.
func (g *Guard) SaveReport(path string) error {
	return report.NewGenerator(g.log, report.WithProjectDir(g.projectDir)).SaveToFile(path)
}
