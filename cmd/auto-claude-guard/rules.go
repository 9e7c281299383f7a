package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlwainwright/Auto-Claude/cmd/auto-claude-guard/internal"
	"github.com/jlwainwright/Auto-Claude/internal/rule"
)

// Rules command flags
var (
	rulesTool     string
	rulesCategory string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the active rule catalog",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active rules after config overrides",
	Long: `List the merged rule catalog for the project: built-in rules minus
disabled ones, with severity overrides and custom rules applied.`,
	RunE: runRulesList,
}

var rulesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List built-in rule categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := formatter()
		if jsonOutput {
			return out.PrintJSON(rule.Categories())
		}
		for _, c := range rule.Categories() {
			cmd.Println(c)
		}
		return nil
	},
}

func init() {
	rulesListCmd.Flags().StringVar(&rulesTool, "tool", "", "Only rules applying to this tool type")
	rulesListCmd.Flags().StringVar(&rulesCategory, "category", "", "Only rules in this category")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCategoriesCmd)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	guard, _, err := newGuard()
	if err != nil {
		return err
	}

	rules := guard.Rules()
	if rulesTool != "" {
		tool := rule.ToolType(strings.ToLower(rulesTool))
		if !tool.IsValid() {
			return internal.NewError(internal.ExitError,
				fmt.Sprintf("unknown tool %q (expected bash, write, edit, web_fetch, or web_search)", rulesTool))
		}
		rules = rule.ActiveRules(rules, tool)
	}
	if rulesCategory != "" {
		filtered := rules[:0:0]
		for _, r := range rules {
			if strings.EqualFold(r.Category, rulesCategory) {
				filtered = append(filtered, r)
			}
		}
		rules = filtered
	}

	out := formatter()
	if jsonOutput {
		return out.PrintJSON(rules)
	}

	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		tools := make([]string, len(r.ToolTypes))
		for i, t := range r.ToolTypes {
			tools[i] = string(t)
		}
		rows = append(rows, []string{
			r.ID,
			string(r.Severity),
			string(r.Priority),
			strings.Join(tools, ","),
			string(r.Context),
			r.Category,
		})
	}
	if err := out.PrintTable([]string{"rule", "severity", "priority", "tools", "context", "category"}, rows); err != nil {
		return err
	}
	cmd.Printf("\n%d rules active\n", len(rules))
	return nil
}
