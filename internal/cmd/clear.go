package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewClearCommand creates the 'verdict clear' command
func NewClearCommand() *cobra.Command {
	var (
		clearAll  bool
		olderThan time.Duration
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "clear [problem-id]",
		Short: "Delete persisted analyses",
		Long: `Delete analyses from the history database.

Examples:
  # Clear analyses of one problem (requires confirmation)
  verdict clear two-sum

  # Clear everything (requires confirmation)
  verdict clear --all

  # Drop analyses older than 30 days without prompting
  verdict clear --older-than 720h --yes`,
		Args: func(cmd *cobra.Command, args []string) error {
			selectors := len(args)
			if clearAll {
				selectors++
			}
			if olderThan > 0 {
				selectors++
			}
			if selectors != 1 {
				return fmt.Errorf("specify exactly one of: a problem ID, --all, --older-than")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			problemID := ""
			if len(args) == 1 {
				problemID = args[0]
			}
			return runClear(cmd, problemID, olderThan, yes)
		},
	}

	cmd.Flags().BoolVar(&clearAll, "all", false, "Clear the entire history")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Clear analyses older than this age")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runClear(cmd *cobra.Command, problemID string, olderThan time.Duration, yes bool) error {
	out := cmd.OutOrStdout()

	a, err := newApp(cmd, appOptions{history: true})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireHistory(); err != nil {
		return err
	}

	switch {
	case olderThan > 0:
		fmt.Fprintf(out, "This will delete analyses older than %s.\n", olderThan)
	case problemID != "":
		fmt.Fprintf(out, "This will delete all analyses for problem: %s\n", problemID)
	default:
		fmt.Fprintf(out, "WARNING: This will delete ALL analyses from %s.\n", a.history.Path())
	}
	if !yes && !confirmAction(cmd.InOrStdin(), out) {
		fmt.Fprintf(out, "Operation cancelled.\n")
		return nil
	}

	var deleted int64
	if olderThan > 0 {
		deleted, err = a.history.CleanupOlderThan(cmd.Context(), time.Now().Add(-olderThan))
	} else {
		deleted, err = a.history.DeleteAnalyses(cmd.Context(), problemID)
	}
	if err != nil {
		return err
	}

	recordText := "analysis"
	if deleted != 1 {
		recordText = "analyses"
	}
	fmt.Fprintf(out, "Deleted %d %s.\n", deleted, recordText)
	return nil
}

// confirmAction prompts on out and reads a yes/no answer from in
func confirmAction(in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "Continue? [y/N]: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
