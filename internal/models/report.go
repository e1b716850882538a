package models

// Report is the payload accepted by the ingestion endpoint. Field names are
// part of the wire contract and must not change.
type Report struct {
	ErrorMessage       string `json:"errorMessage"`
	ErrorType          string `json:"errorType"`
	ErrorSubtype       string `json:"errorSubtype,omitempty"`
	Language           string `json:"language"`
	Code               string `json:"code"`
	LineNumber         *int   `json:"lineNumber,omitempty"`
	ColumnNumber       *int   `json:"columnNumber,omitempty"`
	SnippetContext     string `json:"snippetContext,omitempty"`
	TestCase           string `json:"testCase,omitempty"`
	ProblemID          string `json:"problemId"`
	PatternName        string `json:"patternName,omitempty"`
	PatternDescription string `json:"patternDescription,omitempty"`
}

// NewReport builds the ingestion payload for an analysis. Code and language
// are not part of ErrorAnalysis and are passed through from the request.
func NewReport(a ErrorAnalysis, code, language string) Report {
	r := Report{
		ErrorMessage:   a.ErrorMessage,
		ErrorType:      string(a.ErrorType),
		ErrorSubtype:   string(a.ErrorCategory),
		Language:       language,
		Code:           code,
		LineNumber:     a.LineNumber,
		ColumnNumber:   a.ColumnNumber,
		SnippetContext: a.CodeSnippet,
		TestCase:       a.FailedTestCase,
		ProblemID:      a.ProblemID(),
		PatternName:    string(a.ErrorPattern),
	}
	if a.ErrorPattern.IsSet() {
		r.PatternDescription = PatternDescription(a.ErrorCategory, a.ErrorPattern)
	}
	return r
}

// PatternDescription formats "<category>: <pattern>".
func PatternDescription(c ErrorCategory, p ErrorPattern) string {
	return string(c) + ": " + string(p)
}
