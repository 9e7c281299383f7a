package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlwainwright/Auto-Claude/internal/override"
	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Override command flags
var (
	overrideRule        string
	overrideScope       string
	overrideExpiresIn   time.Duration
	overrideNeverExpire bool
	overrideMaxUses     int
	overrideReason      string
	overrideIncludeAll  bool
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage override tokens",
	Long: `Override tokens let a reviewed, deliberate exception pass a rule that
would otherwise fire. Tokens are scoped, expire, and are consumed on use.`,
}

var overrideCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an override token for a rule",
	Long: `Create a token that suppresses one rule for matching tool calls.

Scopes:
  all                  any tool call (default)
  file:<glob>          calls targeting matching paths
  command:<substring>  bash commands containing the substring

Examples:
  auto-claude-guard override create --rule bash-force-push --reason "release hotfix"
  auto-claude-guard override create --rule env-file-write --scope "file:.env.test" --max-uses 3`,
	RunE: runOverrideCreate,
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List override tokens",
	RunE:  runOverrideList,
}

var overrideRevokeCmd = &cobra.Command{
	Use:   "revoke <token-id>",
	Short: "Revoke an override token",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverrideRevoke,
}

var overrideCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired and spent tokens from the store",
	RunE:  runOverrideCleanup,
}

func init() {
	overrideCreateCmd.Flags().StringVar(&overrideRule, "rule", "", "Rule ID the token overrides (required)")
	overrideCreateCmd.Flags().StringVar(&overrideScope, "scope", "all", "Token scope: all, file:<glob>, or command:<substring>")
	overrideCreateCmd.Flags().DurationVar(&overrideExpiresIn, "expires-in", 0, "Token lifetime (default 1h)")
	overrideCreateCmd.Flags().BoolVar(&overrideNeverExpire, "never-expire", false, "Token never expires")
	overrideCreateCmd.Flags().IntVar(&overrideMaxUses, "max-uses", -1, "Maximum uses, 0 for unlimited (default 1)")
	overrideCreateCmd.Flags().StringVar(&overrideReason, "reason", "", "Why the override is needed")
	_ = overrideCreateCmd.MarkFlagRequired("rule")

	overrideListCmd.Flags().StringVar(&overrideRule, "rule", "", "Only tokens for this rule ID")
	overrideListCmd.Flags().BoolVar(&overrideIncludeAll, "include-expired", false, "Include expired and spent tokens")

	overrideCmd.AddCommand(overrideCreateCmd)
	overrideCmd.AddCommand(overrideListCmd)
	overrideCmd.AddCommand(overrideRevokeCmd)
	overrideCmd.AddCommand(overrideCleanupCmd)
}

// newStore opens the project's token store without loading the full guard.
func newStore() (*override.Store, error) {
	dir, err := resolveProjectDir()
	if err != nil {
		return nil, err
	}
	return override.NewStore(dir, override.WithLogger(newLogger())), nil
}

func runOverrideCreate(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	opts := override.GenerateOptions{
		Scope:       overrideScope,
		ExpiresIn:   overrideExpiresIn,
		NeverExpire: overrideNeverExpire,
		Reason:      overrideReason,
	}
	if overrideMaxUses >= 0 {
		opts.MaxUses = &overrideMaxUses
	}

	token, err := store.Generate(overrideRule, opts)
	if err != nil {
		return err
	}

	out := formatter()
	if jsonOutput {
		return out.PrintJSON(token)
	}
	if err := out.PrintSuccess(fmt.Sprintf("created token %s for rule %s", token.TokenID, token.RuleID)); err != nil {
		return err
	}
	cmd.Printf("  scope:   %s\n", token.Scope)
	cmd.Printf("  expires: %s\n", formatExpiry(token))
	cmd.Printf("  uses:    %s\n", formatUses(token))
	return nil
}

func runOverrideList(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	tokens, err := store.List(overrideRule, overrideIncludeAll)
	if err != nil {
		return err
	}

	out := formatter()
	if jsonOutput {
		return out.PrintJSON(tokens)
	}

	if len(tokens) == 0 {
		cmd.Println("No override tokens")
		return nil
	}

	rows := make([][]string, 0, len(tokens))
	for _, t := range tokens {
		rows = append(rows, []string{
			t.TokenID.String(),
			t.RuleID,
			t.Scope,
			formatExpiry(t),
			formatUses(t),
		})
	}
	return out.PrintTable([]string{"token", "rule", "scope", "expires", "uses"}, rows)
}

func runOverrideRevoke(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	tokenID, err := types.ParseTokenID(args[0])
	if err != nil {
		return err
	}

	if err := store.Revoke(tokenID); err != nil {
		return err
	}
	return formatter().PrintSuccess(fmt.Sprintf("revoked token %s", tokenID))
}

func runOverrideCleanup(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	removed, err := store.CleanupExpired()
	if err != nil {
		return err
	}
	return formatter().PrintSuccess(fmt.Sprintf("removed %d token(s)", removed))
}

func formatExpiry(t *override.Token) string {
	if t.ExpiresAt == nil {
		return "never"
	}
	return t.ExpiresAt.UTC().Format(time.RFC3339)
}

func formatUses(t *override.Token) string {
	if t.MaxUses == 0 {
		return fmt.Sprintf("%d/unlimited", t.UseCount)
	}
	return fmt.Sprintf("%d/%d", t.UseCount, t.MaxUses)
}
