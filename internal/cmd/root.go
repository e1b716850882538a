package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for verdict
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verdict",
		Short: "Error analysis for failed code submissions",
		Long: `Verdict classifies failed submissions to coding problems.

Each submission is reduced to a structured diagnosis: the error type,
the line and column involved, a code snippet around the failure, a
fine-grained error pattern and a conceptual category. Diagnoses are
counted per pattern, optionally persisted to a local history database
and forwarded to an ingestion endpoint.

Configuration is loaded from $VERDICT_HOME/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $VERDICT_HOME/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run logs")
	cmd.PersistentFlags().String("db", "", "Path to the history database")
	cmd.PersistentFlags().String("endpoint", "", "Ingestion endpoint; setting it enables publishing")

	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewPatternsCommand())
	cmd.AddCommand(NewSimilarCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewClearCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}
