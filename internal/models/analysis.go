package models

import "fmt"

// UnknownErrorMessage is used when neither an error message nor a status
// message was supplied.
const UnknownErrorMessage = "Unknown error"

// ProblemContext identifies the problem a submission was made against.
type ProblemContext struct {
	ProblemID  string `json:"problemId"`
	Title      string `json:"title,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Request carries the raw signals collected for a failed submission.
// Only Code and Language are reliably present; everything else is optional.
type Request struct {
	StatusMessage     string `json:"statusMessage,omitempty"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
	Code              string `json:"code"`
	Language          string `json:"language"`
	FailedTestCase    string `json:"failedTestCase,omitempty"`
	ExpectedOutput    string `json:"expectedOutput,omitempty"`
	ActualOutput      string `json:"actualOutput,omitempty"`
	ProblemID         string `json:"problemId,omitempty"`
	ProblemTitle      string `json:"problemTitle,omitempty"`
	ProblemDifficulty string `json:"problemDifficulty,omitempty"`
}

// ErrorAnalysis is the structured diagnosis of a failed submission.
// It is a value: once produced it is never modified.
type ErrorAnalysis struct {
	ErrorType      ErrorType       `json:"errorType"`
	ErrorPattern   ErrorPattern    `json:"errorPattern,omitempty"`
	ErrorCategory  ErrorCategory   `json:"errorCategory,omitempty"`
	LineNumber     *int            `json:"lineNumber,omitempty"`
	ColumnNumber   *int            `json:"columnNumber,omitempty"`
	ErrorMessage   string          `json:"errorMessage"`
	CodeSnippet    string          `json:"codeSnippet,omitempty"`
	FailedTestCase string          `json:"failedTestCase,omitempty"`
	ExpectedOutput string          `json:"expectedOutput,omitempty"`
	ActualOutput   string          `json:"actualOutput,omitempty"`
	ProblemContext *ProblemContext `json:"problemContext,omitempty"`
}

// ProblemID returns the problem identifier, or "" when no problem context is attached.
func (a ErrorAnalysis) ProblemID() string {
	if a.ProblemContext == nil {
		return ""
	}
	return a.ProblemContext.ProblemID
}

// Line returns the line number and whether one was extracted.
func (a ErrorAnalysis) Line() (int, bool) {
	if a.LineNumber == nil {
		return 0, false
	}
	return *a.LineNumber, true
}

// Summary renders a one-line description such as "RUNTIME/NULL_POINTER (VARIABLE_MANAGEMENT) line 12".
func (a ErrorAnalysis) Summary() string {
	s := string(a.ErrorType)
	if a.ErrorPattern.IsSet() {
		s += "/" + string(a.ErrorPattern)
	}
	if a.ErrorCategory != "" {
		s += fmt.Sprintf(" (%s)", a.ErrorCategory)
	}
	if line, ok := a.Line(); ok {
		s += fmt.Sprintf(" line %d", line)
	}
	return s
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
