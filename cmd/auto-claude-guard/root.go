package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jlwainwright/Auto-Claude/cmd/auto-claude-guard/internal"
	"github.com/jlwainwright/Auto-Claude/internal/guardrail"
)

// Global flags shared by all subcommands
var (
	projectDir string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "auto-claude-guard",
	Short: "Auto Claude Guard - pre-execution validation for agent tool calls",
	Long: `Auto Claude Guard inspects agent tool calls before they run and
decides whether each one is allowed, warned, or blocked.

Commands validate individual tool calls, manage override tokens,
inspect the active rule catalog, and render session audit reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", ".", "Project directory containing .auto-claude/")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveProjectDir makes the --project-dir flag absolute so token and
// config paths stay stable regardless of the working directory.
func resolveProjectDir() (string, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", internal.WrapError(internal.ExitError, "resolving project directory", err)
	}
	return abs, nil
}

// newGuard builds the validation guard for the resolved project directory.
func newGuard() (*guardrail.Guard, string, error) {
	dir, err := resolveProjectDir()
	if err != nil {
		return nil, "", err
	}
	return guardrail.New(dir, guardrail.WithLogger(newLogger())), dir, nil
}

// eventsFile is where check persists the audit trail between invocations.
func eventsFile(dir string) string {
	return filepath.Join(dir, ".auto-claude", "validation-events.json")
}

// newLogger builds the CLI's structured logger. Logs go to stderr so
// stdout stays clean for command output.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// formatter returns the output formatter selected by the --json flag.
func formatter() internal.Formatter {
	if jsonOutput {
		return internal.NewFormatter(internal.FormatJSON, os.Stdout)
	}
	return internal.NewFormatter(internal.FormatText, os.Stdout)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("auto-claude-guard v1.0.0")
	},
}
