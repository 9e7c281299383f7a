// Package report renders the session's validation events as a markdown
// audit report. Output is deterministic for a given event set so reports
// can be diffed across runs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jlwainwright/Auto-Claude/internal/events"
	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

const maxExamplesPerRule = 3

// Generator renders reports from a session event log.
type Generator struct {
	log        *events.Logger
	projectDir string
	now        func() time.Time
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithProjectDir includes the project directory in the report header.
func WithProjectDir(dir string) GeneratorOption {
	return func(g *Generator) {
		g.projectDir = dir
	}
}

// WithClock overrides the timestamp source, used in tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a report generator over the given event log.
func NewGenerator(log *events.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Markdown renders the full report.
func (g *Generator) Markdown() string {
	var sections []string

	sections = append(sections, g.header(), "")
	sections = append(sections, g.summary(), "")

	if blocked := g.log.BlockedEvents(); len(blocked) > 0 {
		sections = append(sections, g.decisionSection("Blocked Operations",
			fmt.Sprintf("The following %d operations were blocked by validation rules:", len(blocked)),
			blocked), "")
	}
	if warnings := g.log.WarningEvents(); len(warnings) > 0 {
		sections = append(sections, g.decisionSection("Warnings",
			fmt.Sprintf("The following %d warnings were issued:", len(warnings)),
			warnings), "")
	}
	if overrides := g.log.OverrideEvents(); len(overrides) > 0 {
		sections = append(sections, g.overrideSection(overrides), "")
	}

	if s := g.toolStatistics(); s != "" {
		sections = append(sections, s, "")
	}
	if s := g.severityBreakdown(); s != "" {
		sections = append(sections, s, "")
	}

	sections = append(sections, g.footer())
	return strings.Join(sections, "\n")
}

// SaveToFile writes the report to path, creating parent directories.
func (g *Generator) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return types.WrapError(types.EVENT_LOG_IO, "cannot create report directory", err)
	}
	if err := os.WriteFile(path, []byte(g.Markdown()), 0o644); err != nil {
		return types.WrapError(types.EVENT_LOG_IO, "cannot write report", err)
	}
	return nil
}

func (g *Generator) header() string {
	stats := g.log.Statistics()
	lines := []string{
		"# Output Validation Report",
		"",
		fmt.Sprintf("**Generated:** %s", g.now().UTC().Format("2006-01-02 15:04:05 UTC")),
	}
	if g.projectDir != "" {
		lines = append(lines, fmt.Sprintf("**Project:** `%s`", g.projectDir))
	}
	lines = append(lines, fmt.Sprintf("**Total Validations:** %d", stats.TotalValidations))
	return strings.Join(lines, "\n")
}

func (g *Generator) summary() string {
	stats := g.log.Statistics()
	lines := []string{
		"## Summary",
		"",
		"| Metric | Count |",
		"|--------|-------|",
		fmt.Sprintf("| **Total Validations** | %d |", stats.TotalValidations),
		fmt.Sprintf("| 🔴 **Blocked** | %d |", stats.Blocked),
		fmt.Sprintf("| ⚠️ **Warnings** | %d |", stats.Warnings),
		fmt.Sprintf("| ✅ **Allowed** | %d |", stats.Allowed),
		fmt.Sprintf("| 🔑 **Overrides Used** | %d |", stats.OverridesUsed),
	}
	return strings.Join(lines, "\n")
}

// decisionSection renders blocked or warned events grouped by primary rule
// id, most frequent group first, ties broken by rule id.
func (g *Generator) decisionSection(title, intro string, evs []*events.Event) string {
	lines := []string{"## " + title, "", intro, ""}

	byRule := map[string][]*events.Event{}
	for _, e := range evs {
		id := e.PrimaryRuleID()
		if id == "" {
			id = "unknown"
		}
		byRule[id] = append(byRule[id], e)
	}

	ids := make([]string, 0, len(byRule))
	for id := range byRule {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(byRule[ids[i]]) != len(byRule[ids[j]]) {
			return len(byRule[ids[i]]) > len(byRule[ids[j]])
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		group := byRule[id]
		first := group[0]

		lines = append(lines, "### "+id)
		lines = append(lines, fmt.Sprintf("%s **Severity:** %s", severityIcon(first.Severity), severityName(first.Severity)))
		lines = append(lines, fmt.Sprintf("**Reason:** %s", first.Reason))
		lines = append(lines, fmt.Sprintf("**Occurrences:** %d", len(group)))
		lines = append(lines, "", "**Examples:**")

		for i, e := range group {
			if i == maxExamplesPerRule {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. **%s** - %s", i+1, e.Tool, formatInput(e.InputSummary)))
		}
		if len(group) > maxExamplesPerRule {
			lines = append(lines, fmt.Sprintf("   *... and %d more*", len(group)-maxExamplesPerRule))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) overrideSection(overrides []*events.Event) string {
	lines := []string{
		"## Override Tokens Used",
		"",
		fmt.Sprintf("The following %d override tokens were used to bypass validation:", len(overrides)),
		"",
	}
	n := 0
	for _, e := range overrides {
		for _, use := range overrideUses(e) {
			n++
			lines = append(lines, fmt.Sprintf("%d. **Token:** `%s`", n, use.TokenID))
			lines = append(lines, fmt.Sprintf("   - **Rule:** %s", use.RuleID))
			lines = append(lines, fmt.Sprintf("   - **Tool:** %s", e.Tool))
			if use.Scope != "" {
				lines = append(lines, fmt.Sprintf("   - **Scope:** `%s`", use.Scope))
			}
			if use.Reason != "" {
				lines = append(lines, fmt.Sprintf("   - **Reason:** %s", use.Reason))
			}
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

// overrideUses returns the token usages of an event. Events written before
// usage records were kept carry only token ids; those fall back to rows
// built from the event itself.
func overrideUses(e *events.Event) []events.OverrideUse {
	if len(e.Overrides) > 0 {
		return e.Overrides
	}
	uses := make([]events.OverrideUse, 0, len(e.OverrideTokenIDs))
	for _, tokenID := range e.OverrideTokenIDs {
		uses = append(uses, events.OverrideUse{
			TokenID: tokenID,
			RuleID:  strings.Join(e.RuleIDs, ", "),
		})
	}
	return uses
}

func (g *Generator) toolStatistics() string {
	stats := g.log.Statistics()
	if len(stats.ByTool) == 0 {
		return ""
	}

	type toolCount struct {
		tool  string
		count int
	}
	counts := make([]toolCount, 0, len(stats.ByTool))
	for tool, count := range stats.ByTool {
		counts = append(counts, toolCount{tool, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].tool < counts[j].tool
	})

	lines := []string{
		"## Statistics by Tool",
		"",
		"| Tool | Validations |",
		"|------|-------------|",
	}
	for _, tc := range counts {
		lines = append(lines, fmt.Sprintf("| %s | %d |", tc.tool, tc.count))
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) severityBreakdown() string {
	stats := g.log.Statistics()
	if len(stats.BySeverity) == 0 {
		return ""
	}

	lines := []string{
		"## Blocked Operations by Severity",
		"",
		"| Severity | Count |",
		"|----------|-------|",
	}
	for _, sev := range []rule.Severity{rule.SeverityCritical, rule.SeverityHigh, rule.SeverityMedium, rule.SeverityLow} {
		if count, ok := stats.BySeverity[string(sev)]; ok {
			lines = append(lines, fmt.Sprintf("| %s %s | %d |",
				severityIcon(sev), strings.ToUpper(string(sev)), count))
		}
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) footer() string {
	return strings.Join([]string{
		"---",
		"",
		"*This report was generated by the Auto Claude Output Validation System.*",
		"",
		"For more information about validation rules and configuration, see the documentation.",
	}, "\n")
}

func severityIcon(s rule.Severity) string {
	switch s {
	case rule.SeverityCritical:
		return "🔴"
	case rule.SeverityHigh:
		return "🟠"
	case rule.SeverityMedium:
		return "🟡"
	case rule.SeverityLow:
		return "🔵"
	default:
		return "⚪"
	}
}

func severityName(s rule.Severity) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

// formatInput renders an input summary with deterministic key order.
func formatInput(summary map[string]string) string {
	if len(summary) == 0 {
		return "(no input)"
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: `%s`", k, summary[k]))
	}
	return strings.Join(parts, ", ")
}
