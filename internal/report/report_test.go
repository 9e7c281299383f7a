package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlwainwright/Auto-Claude/internal/events"
	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func populatedLog() *events.Logger {
	lg := events.NewLogger(events.WithClock(fixedClock()))

	for i := 0; i < 4; i++ {
		lg.Record(&events.Event{
			Tool:         rule.ToolBash,
			RuleIDs:      []string{"bash-rm-rf-root"},
			Decision:     events.VerdictBlocked,
			Severity:     rule.SeverityCritical,
			Reason:       "destructive delete",
			InputSummary: map[string]string{"command": "rm -rf /"},
		})
	}
	lg.Record(&events.Event{
		Tool:         rule.ToolWrite,
		RuleIDs:      []string{"write-api-key-pattern"},
		Decision:     events.VerdictBlocked,
		Severity:     rule.SeverityCritical,
		Reason:       "api key in file",
		InputSummary: map[string]string{"file_path": "config.ini"},
	})
	lg.Record(&events.Event{
		Tool:     rule.ToolBash,
		RuleIDs:  []string{"bash-curl-data-exfil"},
		Decision: events.VerdictWarned,
		Severity: rule.SeverityMedium,
		Reason:   "data sent to external server",
	})
	lg.Record(&events.Event{
		Tool:             rule.ToolBash,
		RuleIDs:          []string{"bash-chmod-777"},
		Decision:         events.VerdictAllowed,
		Overridden:       true,
		OverrideTokenIDs: []types.TokenID{"f1db5c35-36a1-44cf-a2b6-3eb16bd988d6"},
		Overrides: []events.OverrideUse{{
			TokenID: "f1db5c35-36a1-44cf-a2b6-3eb16bd988d6",
			RuleID:  "bash-chmod-777",
			Scope:   "command:chmod 777 /srv/static",
			Reason:  "one-off permissions fix",
		}},
		Reason: "override token",
	})
	return lg
}

func TestGenerator_Markdown(t *testing.T) {
	g := NewGenerator(populatedLog(), WithClock(fixedClock()), WithProjectDir("/work/app"))
	md := g.Markdown()

	assert.Contains(t, md, "# Output Validation Report")
	assert.Contains(t, md, "**Generated:** 2026-03-01 12:00:00 UTC")
	assert.Contains(t, md, "**Project:** `/work/app`")
	assert.Contains(t, md, "| **Total Validations** | 7 |")
	assert.Contains(t, md, "| 🔴 **Blocked** | 5 |")
	assert.Contains(t, md, "| ⚠️ **Warnings** | 1 |")
	assert.Contains(t, md, "| 🔑 **Overrides Used** | 1 |")

	assert.Contains(t, md, "## Blocked Operations")
	assert.Contains(t, md, "### bash-rm-rf-root")
	assert.Contains(t, md, "**Occurrences:** 4")
	assert.Contains(t, md, "*... and 1 more*")

	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "### bash-curl-data-exfil")

	assert.Contains(t, md, "## Override Tokens Used")
	assert.Contains(t, md, "`f1db5c35-36a1-44cf-a2b6-3eb16bd988d6`")
	assert.Contains(t, md, "- **Rule:** bash-chmod-777")
	assert.Contains(t, md, "- **Scope:** `command:chmod 777 /srv/static`")
	assert.Contains(t, md, "- **Reason:** one-off permissions fix")

	assert.Contains(t, md, "## Statistics by Tool")
	assert.Contains(t, md, "| bash | 6 |")
	assert.Contains(t, md, "## Blocked Operations by Severity")
	assert.Contains(t, md, "🔴 CRITICAL | 5")

	// Most frequent blocked group is listed first.
	assert.Less(t,
		strings.Index(md, "### bash-rm-rf-root"),
		strings.Index(md, "### write-api-key-pattern"))
}

func TestGenerator_Deterministic(t *testing.T) {
	g := NewGenerator(populatedLog(), WithClock(fixedClock()))
	first := g.Markdown()
	second := g.Markdown()
	assert.Equal(t, first, second)

	other := NewGenerator(populatedLog(), WithClock(fixedClock()))
	assert.Equal(t, first, other.Markdown())
}

func TestGenerator_LegacyOverrideEvent(t *testing.T) {
	lg := events.NewLogger(events.WithClock(fixedClock()))
	lg.Record(&events.Event{
		Tool:             rule.ToolBash,
		RuleIDs:          []string{"bash-chmod-777"},
		Decision:         events.VerdictAllowed,
		Overridden:       true,
		OverrideTokenIDs: []types.TokenID{"2b8f0f1e-8d0a-4f4e-9c63-5a2f8b1f0c11"},
		Reason:           "override token",
	})

	md := NewGenerator(lg, WithClock(fixedClock())).Markdown()

	assert.Contains(t, md, "`2b8f0f1e-8d0a-4f4e-9c63-5a2f8b1f0c11`")
	assert.Contains(t, md, "- **Rule:** bash-chmod-777")
	assert.NotContains(t, md, "**Scope:**", "events without usage records have no scope to show")
}

func TestGenerator_EmptyLog(t *testing.T) {
	g := NewGenerator(events.NewLogger(), WithClock(fixedClock()))
	md := g.Markdown()

	assert.Contains(t, md, "| **Total Validations** | 0 |")
	assert.NotContains(t, md, "## Blocked Operations")
	assert.NotContains(t, md, "## Warnings")
	assert.NotContains(t, md, "## Override Tokens Used")
	assert.NotContains(t, md, "## Statistics by Tool")
}

func TestGenerator_SaveToFile(t *testing.T) {
	g := NewGenerator(populatedLog(), WithClock(fixedClock()))
	path := filepath.Join(t.TempDir(), "reports", "validation-report.md")

	require.NoError(t, g.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, g.Markdown(), string(data))
}
