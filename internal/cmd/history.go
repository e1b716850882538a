package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/learning"
	"github.com/harrison/verdict/internal/models"
)

// NewHistoryCommand creates the 'verdict history' command
func NewHistoryCommand() *cobra.Command {
	var (
		filter  learning.Filter
		pattern string
		errType string
		since   time.Duration
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted analyses",
		Long: `List analyses stored in the history database, newest first.

Examples:
  # The 20 most recent analyses
  verdict history

  # Null pointer errors of one problem in the last day
  verdict history --problem two-sum --pattern null_pointer --since 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pattern != "" {
				p, ok := models.ParseErrorPattern(pattern)
				if !ok {
					return fmt.Errorf("unknown pattern %q", pattern)
				}
				filter.Pattern = p
			}
			if errType != "" {
				t := models.ParseErrorType(errType)
				if t == models.ErrorTypeUnknown && !strings.EqualFold(errType, string(models.ErrorTypeUnknown)) {
					return fmt.Errorf("unknown error type %q", errType)
				}
				filter.Type = t
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}
			return runHistory(cmd, filter, asJSON)
		},
	}

	cmd.Flags().StringVar(&filter.ProblemID, "problem", "", "Only show analyses of this problem")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Only show this error pattern")
	cmd.Flags().StringVar(&errType, "type", "", "Only show this error type")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show analyses newer than this (e.g. 24h)")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "Maximum number of analyses (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print analyses as JSON")

	cmd.AddCommand(newHistoryShowCommand())

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one persisted analysis in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, appOptions{history: true})
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireHistory(); err != nil {
				return err
			}

			rec, err := a.history.GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("analysis not found: %s", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", rec.ID)
			fmt.Fprintf(out, "Recorded: %s\n", rec.CreatedAt.Format(time.RFC3339))
			if rec.Request.Language != "" {
				fmt.Fprintf(out, "Language: %s\n", rec.Request.Language)
			}
			if rec.Request.StatusMessage != "" {
				fmt.Fprintf(out, "Status:   %s\n", rec.Request.StatusMessage)
			}
			fmt.Fprintln(out)
			printAnalysis(out, rec.Analysis, nil, useColor(out))
			return nil
		},
	}
}

// historyEntry is the JSON form of a history record.
type historyEntry struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"createdAt"`
	Language  string               `json:"language,omitempty"`
	Analysis  models.ErrorAnalysis `json:"analysis"`
}

func runHistory(cmd *cobra.Command, filter learning.Filter, asJSON bool) error {
	a, err := newApp(cmd, appOptions{history: true})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireHistory(); err != nil {
		return err
	}

	records, err := a.history.ListAnalyses(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		entries := make([]historyEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, historyEntry{
				ID:        rec.ID,
				CreatedAt: rec.CreatedAt,
				Language:  rec.Request.Language,
				Analysis:  rec.Analysis,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	return printHistory(out, records)
}

func printHistory(w io.Writer, records []*learning.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No analyses found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECORDED\tPROBLEM\tTYPE\tPATTERN\tLINE")
	for _, rec := range records {
		problem := rec.Analysis.ProblemID()
		if problem == "" {
			problem = "-"
		}
		line := "-"
		if n, ok := rec.Analysis.Line(); ok {
			line = fmt.Sprint(n)
		}
		pattern := string(rec.Analysis.ErrorPattern)
		if pattern == "" {
			pattern = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), problem, rec.Analysis.ErrorType, pattern, line)
	}
	return tw.Flush()
}
