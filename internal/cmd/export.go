package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/learning"
	"github.com/harrison/verdict/internal/report"
)

// NewExportCommand creates the 'verdict export' command
func NewExportCommand() *cobra.Command {
	var (
		format    string
		problemID string
	)

	cmd := &cobra.Command{
		Use:   "export <output-file>",
		Short: "Write a pattern report to a file",
		Long: `Write a pattern frequency report to a file.

The format follows the file extension (.md, .html, .json, otherwise text)
unless --format is given. The file is replaced atomically while holding
a lock, so concurrent exports never leave a partial report.

Examples:
  verdict export report.md
  verdict export --problem two-sum out/two-sum.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			f := report.FormatFromPath(path)
			if format != "" {
				parsed, err := report.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}

			a, err := newApp(cmd, appOptions{history: true})
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireHistory(); err != nil {
				return err
			}

			fs, err := a.patternStore(cmd.Context(), learning.Filter{ProblemID: problemID})
			if err != nil {
				return err
			}

			summary := report.Build(fs.TopPatterns(), time.Now())
			if err := report.WriteFile(path, f, summary); err != nil {
				return fmt.Errorf("export report: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s report of %d analyses to %s\n", f, summary.Total, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, html, json")
	cmd.Flags().StringVar(&problemID, "problem", "", "Only include analyses of this problem")

	return cmd
}
