package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/learning"
	"github.com/harrison/verdict/internal/report"
)

// NewPatternsCommand creates the 'verdict patterns' command
func NewPatternsCommand() *cobra.Command {
	var (
		limit     int
		format    string
		problemID string
	)

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show the most frequent error patterns",
		Long: `Show error patterns ordered by how often they occurred.

Counts come from the history database. Patterns with equal counts are
ordered by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, appOptions{history: true})
			if err != nil {
				return err
			}
			defer a.Close()

			fs, err := a.patternStore(cmd.Context(), learning.Filter{ProblemID: problemID})
			if err != nil {
				return err
			}

			top := fs.TopPatterns()
			if limit > 0 && len(top) > limit {
				top = top[:limit]
			}
			summary := report.Build(top, time.Now())

			out := cmd.OutOrStdout()
			if f == report.FormatText {
				return report.RenderText(out, summary, useColor(out))
			}
			return report.Render(out, f, summary)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N patterns (0 = all)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, markdown, html, json")
	cmd.Flags().StringVar(&problemID, "problem", "", "Only count analyses of this problem")

	return cmd
}
