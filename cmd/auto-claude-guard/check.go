package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlwainwright/Auto-Claude/cmd/auto-claude-guard/internal"
	"github.com/jlwainwright/Auto-Claude/internal/rule"
	"github.com/jlwainwright/Auto-Claude/internal/validation"
)

// Check command flags
var (
	checkTool    string
	checkCommand string
	checkPath    string
	checkContent string
	checkURL     string
	checkQuery   string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a tool call against the active rules",
	Long: `Check runs one tool call through the validation pipeline and prints
the decision. Exit code 0 means the call is allowed or warned, exit
code 2 means it is blocked.

Examples:
  auto-claude-guard check --tool bash --command "rm -rf /"
  auto-claude-guard check --tool write --path .env --content "API_KEY=x"
  auto-claude-guard check --tool web_fetch --url http://169.254.169.254/`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkTool, "tool", "", "Tool type: bash, write, edit, web_fetch, web_search (required)")
	checkCmd.Flags().StringVar(&checkCommand, "command", "", "Shell command (bash)")
	checkCmd.Flags().StringVar(&checkPath, "path", "", "Target file path (write, edit)")
	checkCmd.Flags().StringVar(&checkContent, "content", "", "File content (write, edit)")
	checkCmd.Flags().StringVar(&checkURL, "url", "", "URL to fetch (web_fetch)")
	checkCmd.Flags().StringVar(&checkQuery, "query", "", "Search query (web_search)")
	_ = checkCmd.MarkFlagRequired("tool")
}

func runCheck(cmd *cobra.Command, args []string) error {
	inv, err := buildInvocation()
	if err != nil {
		return err
	}

	guard, dir, err := newGuard()
	if err != nil {
		return err
	}
	for _, w := range guard.ConfigWarnings() {
		cmd.PrintErrf("config warning: %s\n", w.Message)
	}
	if err := guard.EventLog().LoadFromFile(eventsFile(dir)); err != nil {
		cmd.PrintErrf("event log warning: %v\n", err)
	}

	decision := guard.Validate(cmd.Context(), inv)
	if err := printDecision(decision); err != nil {
		return err
	}
	if err := guard.EventLog().SaveToFile(eventsFile(dir)); err != nil {
		cmd.PrintErrf("event log warning: %v\n", err)
	}

	if decision.Blocked() {
		return internal.NewError(internal.ExitBlocked, "tool call blocked")
	}
	return nil
}

// buildInvocation assembles the invocation from the check flags.
func buildInvocation() (*validation.Invocation, error) {
	var inv *validation.Invocation
	switch rule.ToolType(strings.ToLower(checkTool)) {
	case rule.ToolBash:
		inv = validation.Bash(checkCommand)
	case rule.ToolWrite:
		inv = validation.Write(checkPath, checkContent)
	case rule.ToolEdit:
		inv = validation.Edit(checkPath, checkContent)
	case rule.ToolWebFetch:
		inv = validation.WebFetch(checkURL)
	case rule.ToolWebSearch:
		inv = validation.WebSearch(checkQuery)
	default:
		return nil, internal.NewError(internal.ExitError,
			fmt.Sprintf("unknown tool %q (expected bash, write, edit, web_fetch, or web_search)", checkTool))
	}

	if err := inv.Validate(); err != nil {
		return nil, internal.WrapError(internal.ExitError, "invalid tool call", err)
	}
	return inv, nil
}

func printDecision(d *validation.Decision) error {
	out := formatter()

	if jsonOutput {
		return out.PrintJSON(map[string]interface{}{
			"verdict":     string(d.Verdict),
			"severity":    string(d.Severity),
			"matches":     d.MatchedRuleIDs(),
			"message":     d.Message,
			"suggestions": d.Suggestions,
			"reason":      d.Reason,
		})
	}

	switch {
	case d.Blocked():
		if err := out.PrintError(fmt.Sprintf("BLOCKED: %s", d.Message)); err != nil {
			return err
		}
	case d.Message != "":
		if err := out.PrintError(fmt.Sprintf("WARNING: %s", d.Message)); err != nil {
			return err
		}
	default:
		reason := "allowed"
		if d.Reason != "" {
			reason = fmt.Sprintf("allowed (%s)", d.Reason)
		}
		if err := out.PrintSuccess(reason); err != nil {
			return err
		}
	}

	for _, s := range d.Suggestions {
		fmt.Printf("  suggestion: %s\n", s)
	}
	return nil
}
