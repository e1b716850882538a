package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/learning"
	"github.com/harrison/verdict/internal/models"
	"github.com/harrison/verdict/internal/similarity"
)

// NewSimilarCommand creates the 'verdict similar' command
func NewSimilarCommand() *cobra.Command {
	var (
		limit     int
		threshold float64
		window    int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "similar <request.json>",
		Short: "Find past analyses similar to a submission",
		Long: `Classify a submission without recording it and list related errors.

Two lists are printed: recorded messages sharing the submission's error
pattern, and past analyses from history ranked by similarity score.
The score weighs a matching error type (0.3), pattern (0.4) and category
(0.2), plus up to 0.1 for word overlap between the messages.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequestFile(cmd, args[0])
			if err != nil {
				return err
			}
			return runSimilar(cmd, req, limit, threshold, window, asJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of ranked matches")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Minimum similarity score")
	cmd.Flags().IntVar(&window, "window", 500, "Number of recent analyses to compare against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

// similarMatch is a ranked history record.
type similarMatch struct {
	ID        string               `json:"id"`
	Score     float64              `json:"score"`
	ProblemID string               `json:"problemId,omitempty"`
	Analysis  models.ErrorAnalysis `json:"analysis"`
}

type similarOutput struct {
	Analysis models.ErrorAnalysis `json:"analysis"`
	Examples []string             `json:"examples"`
	Matches  []similarMatch       `json:"matches"`
}

func runSimilar(cmd *cobra.Command, req models.Request, limit int, threshold float64, window int, asJSON bool) error {
	a, err := newApp(cmd, appOptions{history: true})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireHistory(); err != nil {
		return err
	}

	ctx := cmd.Context()
	analysis := a.svc.Classifier.Classify(req)

	fs, err := a.patternStore(ctx, learning.Filter{})
	if err != nil {
		return err
	}

	records, err := a.history.ListAnalyses(ctx, learning.Filter{Limit: window})
	if err != nil {
		return err
	}
	candidates := make([]models.ErrorAnalysis, len(records))
	for i, rec := range records {
		candidates[i] = rec.Analysis
	}

	result := similarOutput{
		Analysis: analysis,
		Examples: fs.SimilarExamples(analysis.ErrorPattern, analysis.ErrorMessage),
		Matches:  []similarMatch{},
	}
	if result.Examples == nil {
		result.Examples = []string{}
	}
	for _, m := range similarity.Rank(analysis, candidates, threshold, limit) {
		rec := records[m.Index]
		result.Matches = append(result.Matches, similarMatch{
			ID:        rec.ID,
			Score:     m.Score,
			ProblemID: rec.Analysis.ProblemID(),
			Analysis:  rec.Analysis,
		})
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printSimilar(out, result)
	return nil
}

func printSimilar(w io.Writer, r similarOutput) {
	fmt.Fprintln(w, r.Analysis.Summary())

	fmt.Fprintf(w, "\nExamples with the same pattern:\n")
	if len(r.Examples) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, ex := range r.Examples {
		fmt.Fprintf(w, "  - %s\n", ex)
	}

	fmt.Fprintf(w, "\nSimilar analyses:\n")
	if len(r.Matches) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, m := range r.Matches {
		problem := m.ProblemID
		if problem == "" {
			problem = "-"
		}
		fmt.Fprintf(w, "  %.2f  %s  %s  %s\n", m.Score, shortID(m.ID), problem, m.Analysis.Summary())
	}
}

// shortID abbreviates a uuid for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
