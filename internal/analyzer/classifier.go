// Package analyzer classifies failed submissions into structured diagnoses.
//
// Classification runs as a fixed pipeline over the raw signals of a
// submission: error type, line/column, code snippet, pattern and category.
// Every stage has a fallback, so Classify never fails; the least specific
// outcome is an UNKNOWN type with the OTHER pattern.
//
// Classify is pure. Recording into a frequency store and forwarding to a
// reporting sink are separate steps composed by Service.
package analyzer

import (
	"github.com/harrison/verdict/internal/models"
)

// Classifier turns a Request into an ErrorAnalysis.
type Classifier struct {
	// ContextRadius is the number of source lines shown on each side of the error line.
	ContextRadius int
}

// NewClassifier creates a Classifier. A negative radius selects DefaultContextRadius.
func NewClassifier(contextRadius int) *Classifier {
	if contextRadius < 0 {
		contextRadius = DefaultContextRadius
	}
	return &Classifier{ContextRadius: contextRadius}
}

// Classify runs every classification stage and returns the resulting analysis.
func (c *Classifier) Classify(req models.Request) models.ErrorAnalysis {
	lang := models.ParseLanguage(req.Language)

	errType := DetermineErrorType(req.StatusMessage, req.ErrorMessage)
	line, column := ExtractLineInfo(req.ErrorMessage, lang)
	// a location outside the submitted code is not reported
	if line != nil && (*line < 1 || *line > lineCount(req.Code)) {
		line, column = nil, nil
	}
	pattern := DetermineErrorPattern(errType, req.StatusMessage, req.ErrorMessage, req.Code, req.ExpectedOutput, req.ActualOutput)

	analysis := models.ErrorAnalysis{
		ErrorType:      errType,
		ErrorPattern:   pattern,
		ErrorCategory:  CategorizeError(pattern, errType, req.Code),
		LineNumber:     line,
		ColumnNumber:   column,
		ErrorMessage:   normalizeMessage(req.ErrorMessage, req.StatusMessage),
		FailedTestCase: req.FailedTestCase,
		ExpectedOutput: req.ExpectedOutput,
		ActualOutput:   req.ActualOutput,
	}

	if line != nil {
		analysis.CodeSnippet = ExtractCodeSnippet(req.Code, *line, c.ContextRadius)
	}

	if req.ProblemID != "" {
		analysis.ProblemContext = &models.ProblemContext{
			ProblemID:  req.ProblemID,
			Title:      req.ProblemTitle,
			Difficulty: req.ProblemDifficulty,
		}
	}

	return analysis
}

// normalizeMessage falls back from the error message to the status message
// to a fixed placeholder.
func normalizeMessage(errorMessage, statusMessage string) string {
	switch {
	case errorMessage != "":
		return errorMessage
	case statusMessage != "":
		return statusMessage
	default:
		return models.UnknownErrorMessage
	}
}
