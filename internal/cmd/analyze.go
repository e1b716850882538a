package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/fileutil"
	"github.com/harrison/verdict/internal/models"
)

// NewAnalyzeCommand creates the 'verdict analyze' command
func NewAnalyzeCommand() *cobra.Command {
	var (
		req       models.Request
		codeFile  string
		asJSON    bool
		noHistory bool
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [request.json | dir]...",
		Short: "Classify failed submissions",
		Long: `Classify failed submissions and print the resulting diagnoses.

A submission is read as a JSON request from a file ("-" reads stdin),
or assembled from flags when no file is given. Directories are scanned
for .json request files and analyzed as a batch.

Examples:
  # Analyze a JSON request
  verdict analyze submission.json

  # Analyze every request under a directory tree
  verdict analyze --recursive submissions/

  # Analyze from flags
  verdict analyze --status "Runtime Error" \
    --message "TypeError: Cannot read property 'length' of undefined at line 12" \
    --code-file solution.js --language javascript --problem two-sum`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case len(args) == 1 && (args[0] == "-" || !isDir(args[0])):
				fromFile, err := readRequestFile(cmd, args[0])
				if err != nil {
					return err
				}
				return runAnalyze(cmd, fromFile, asJSON, !noHistory)

			case len(args) > 0:
				scan, err := fileutil.CollectRequestFiles(args, fileutil.ScanOptions{Recursive: recursive})
				if err != nil {
					return err
				}
				return runBatch(cmd, scan, asJSON, !noHistory)
			}

			if codeFile != "" {
				code, err := readInput(cmd, codeFile)
				if err != nil {
					return fmt.Errorf("read code file: %w", err)
				}
				req.Code = string(code)
			}
			if req.StatusMessage == "" && req.ErrorMessage == "" {
				return fmt.Errorf("nothing to analyze: pass a request file or --status/--message")
			}
			return runAnalyze(cmd, req, asJSON, !noHistory)
		},
	}

	cmd.Flags().StringVar(&req.StatusMessage, "status", "", "Judge verdict, e.g. \"Wrong Answer\"")
	cmd.Flags().StringVar(&req.ErrorMessage, "message", "", "Raw error output")
	cmd.Flags().StringVar(&codeFile, "code-file", "", "File holding the submitted source (\"-\" for stdin)")
	cmd.Flags().StringVar(&req.Language, "language", "", "Submission language")
	cmd.Flags().StringVar(&req.FailedTestCase, "test-case", "", "Input of the failing test")
	cmd.Flags().StringVar(&req.ExpectedOutput, "expected", "", "Expected output of the failing test")
	cmd.Flags().StringVar(&req.ActualOutput, "actual", "", "Actual output of the failing test")
	cmd.Flags().StringVar(&req.ProblemID, "problem", "", "Problem identifier")
	cmd.Flags().StringVar(&req.ProblemTitle, "title", "", "Problem title")
	cmd.Flags().StringVar(&req.ProblemDifficulty, "difficulty", "", "Problem difficulty")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not persist the analysis")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan directories recursively")

	return cmd
}

// analyzeOutput is the JSON form of an analyze result.
type analyzeOutput struct {
	File            string               `json:"file,omitempty"`
	Analysis        models.ErrorAnalysis `json:"analysis"`
	SimilarExamples []string             `json:"similarExamples"`
}

func runAnalyze(cmd *cobra.Command, req models.Request, asJSON, persist bool) error {
	a, err := newApp(cmd, appOptions{history: persist, publish: true, fileLog: true, replay: true})
	if err != nil {
		return err
	}
	defer a.Close()

	analysis := a.svc.Analyze(cmd.Context(), req)
	similar := a.svc.SimilarExamples(analysis)

	out := cmd.OutOrStdout()
	if asJSON {
		if similar == nil {
			similar = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeOutput{Analysis: analysis, SimilarExamples: similar})
	}

	printAnalysis(out, analysis, similar, useColor(out))
	return nil
}

// runBatch analyzes every request file in scan. Unreadable files are
// reported and skipped; the batch fails only if no file could be analyzed.
func runBatch(cmd *cobra.Command, scan *fileutil.ScanResult, asJSON, persist bool) error {
	a, err := newApp(cmd, appOptions{history: persist, publish: true, fileLog: true, replay: true})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, scanErr := range scan.Errors {
		a.log.Warnf("%v", scanErr)
	}
	if len(scan.Files) == 0 {
		return fmt.Errorf("no request files found")
	}

	out := cmd.OutOrStdout()
	results := make([]analyzeOutput, 0, len(scan.Files))
	failed := 0
	for _, path := range scan.Files {
		req, err := readRequestFile(cmd, path)
		if err != nil {
			a.log.Warnf("skipping %s: %v", path, err)
			failed++
			continue
		}
		analysis := a.svc.Analyze(cmd.Context(), req)
		results = append(results, analyzeOutput{File: path, Analysis: analysis, SimilarExamples: []string{}})
		if !asJSON {
			fmt.Fprintf(out, "%s: %s\n", filepath.Base(path), analysis.Summary())
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "\nAnalyzed %d of %d files\n", len(results), len(scan.Files))
	}

	if len(results) == 0 {
		return fmt.Errorf("all %d request files failed", failed)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func readRequestFile(cmd *cobra.Command, path string) (models.Request, error) {
	var req models.Request
	data, err := readInput(cmd, path)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request %s: %w", path, err)
	}
	return req, nil
}

// readInput reads a file, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// useColor reports whether w is a terminal that should receive ANSI colours.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printAnalysis writes a human-readable diagnosis.
func printAnalysis(w io.Writer, a models.ErrorAnalysis, similar []string, colorOutput bool) {
	label := fmt.Sprint
	head := fmt.Sprint
	if colorOutput {
		label = color.New(color.FgCyan).Sprint
		head = color.New(color.Bold).Sprint
	}

	fmt.Fprintln(w, head(a.Summary()))
	fmt.Fprintf(w, "%s %s\n", label("Type:    "), a.ErrorType)
	if a.ErrorPattern.IsSet() {
		fmt.Fprintf(w, "%s %s\n", label("Pattern: "), a.ErrorPattern)
		fmt.Fprintf(w, "%s %s\n", label("Category:"), a.ErrorCategory)
	}
	if line, ok := a.Line(); ok {
		loc := fmt.Sprintf("line %d", line)
		if a.ColumnNumber != nil {
			loc += fmt.Sprintf(", column %d", *a.ColumnNumber)
		}
		fmt.Fprintf(w, "%s %s\n", label("Location:"), loc)
	}
	fmt.Fprintf(w, "%s %s\n", label("Message: "), a.ErrorMessage)
	if id := a.ProblemID(); id != "" {
		fmt.Fprintf(w, "%s %s\n", label("Problem: "), id)
	}

	if a.CodeSnippet != "" {
		fmt.Fprintf(w, "\n%s\n", a.CodeSnippet)
	}

	if len(similar) > 0 {
		fmt.Fprintf(w, "\n%s\n", label("Seen before:"))
		for _, ex := range similar {
			fmt.Fprintf(w, "  - %s\n", strings.ReplaceAll(ex, "\n", " "))
		}
	}
}
