package analyzer

import (
	"strings"

	"github.com/harrison/verdict/internal/models"
)

// typeRule maps verdict substrings to an ErrorType.
type typeRule struct {
	Type       models.ErrorType
	Tokens     []string // any token matches
	StatusOnly bool     // match against the status message only
}

// typeRules is evaluated in order; the first matching rule wins.
// "time limit exceeded" must precede "wrong answer" and so on.
var typeRules = []typeRule{
	{
		Type:   models.ErrorTypeTimeLimit,
		Tokens: []string{"time limit exceeded"},
	},
	{
		Type:   models.ErrorTypeMemoryLimit,
		Tokens: []string{"memory limit exceeded"},
	},
	{
		Type:       models.ErrorTypeWrongAnswer,
		Tokens:     []string{"wrong answer", "output limit exceeded"},
		StatusOnly: true,
	},
	{
		Type:   models.ErrorTypeCompilation,
		Tokens: []string{"compile error", "compilation error", "syntax error", "cannot compile"},
	},
	{
		Type: models.ErrorTypeRuntime,
		Tokens: []string{
			"runtime error",
			"null",
			"undefined",
			"cannot read property",
			"index out of bounds",
			"division by zero",
		},
	},
	{
		Type:   models.ErrorTypeLogical,
		Tokens: []string{"accepted with warning", "presentation error", "partially correct"},
	},
	{
		// Accepted submissions still get a slot for logic improvements.
		Type:   models.ErrorTypeLogical,
		Tokens: []string{"accepted"},
	},
}

// DetermineErrorType classifies the verdict and raw error text into an ErrorType.
// Matching is case-insensitive; unrecognized input yields ErrorTypeUnknown.
func DetermineErrorType(statusMessage, errorMessage string) models.ErrorType {
	status := strings.ToLower(statusMessage)
	combined := status + "\n" + strings.ToLower(errorMessage)

	for _, rule := range typeRules {
		text := combined
		if rule.StatusOnly {
			text = status
		}
		if containsAny(text, rule.Tokens...) {
			return rule.Type
		}
	}
	return models.ErrorTypeUnknown
}

// containsAny reports whether s contains any of the tokens.
func containsAny(s string, tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
