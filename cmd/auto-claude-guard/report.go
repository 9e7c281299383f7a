package main

import (
	"github.com/spf13/cobra"

	"github.com/jlwainwright/Auto-Claude/internal/guardrail"
)

// Report command flags
var (
	reportOutput string
	reportEvents string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the validation audit report",
	Long: `Report renders the persisted audit trail as markdown: blocked and
warned operations grouped by rule, override usage, and per-tool
statistics. The trail is written by 'check' under .auto-claude/.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "Write the report to a file instead of stdout")
	reportCmd.Flags().StringVar(&reportEvents, "events", "", "Event log to report on (default .auto-claude/validation-events.json)")
}

func runReport(cmd *cobra.Command, args []string) error {
	dir, err := resolveProjectDir()
	if err != nil {
		return err
	}

	guard := guardrail.New(dir, guardrail.WithLogger(newLogger()))
	eventsPath := reportEvents
	if eventsPath == "" {
		eventsPath = eventsFile(dir)
	}
	if err := guard.EventLog().LoadFromFile(eventsPath); err != nil {
		return err
	}

	if reportOutput != "" {
		if err := guard.SaveReport(reportOutput); err != nil {
			return err
		}
		return formatter().PrintSuccess("report written to " + reportOutput)
	}

	cmd.Print(guard.Report())
	return nil
}
