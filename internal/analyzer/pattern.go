package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harrison/verdict/internal/models"
)

// offByOneRatio is the share of output pairs that must differ by exactly one
// before a wrong answer is attributed to an off-by-one mistake.
const offByOneRatio = 0.3

var (
	// a comparison directly against a ±1 term, e.g. "<= -1" or "+1 <"
	offByOneComparison = regexp.MustCompile(`[<>]=?\s*[+-]1|[+-]1\s*[<>]=?`)
	whileKeyword       = regexp.MustCompile(`\bwhile\b`)
	breakKeyword       = regexp.MustCompile(`\bbreak\b`)
	integerToken       = regexp.MustCompile(`-?\d+`)

	// "exception" as a word of its own, not the suffix of a class name
	exceptionWord = regexp.MustCompile(`\bexception\b`)
)

// runtimeRule maps runtime error text to a pattern.
type runtimeRule struct {
	Pattern models.ErrorPattern
	Match   func(text string) bool
}

// runtimeRules is evaluated in order; the first match wins.
var runtimeRules = []runtimeRule{
	{
		Pattern: models.PatternNullPointer,
		Match: func(s string) bool {
			return containsAny(s, "null", "undefined", "nil pointer", "nil map", "nonetype", "cannot read propert")
		},
	},
	{
		Pattern: models.PatternArrayOutOfBounds,
		Match: func(s string) bool {
			return containsAny(s, "index", "out of bounds", "out of range", "bounds")
		},
	},
	{
		Pattern: models.PatternStackOverflow,
		Match: func(s string) bool {
			return strings.Contains(s, "stack") && containsAny(s, "overflow", "size")
		},
	},
	{
		Pattern: models.PatternDivisionByZero,
		Match: func(s string) bool {
			return containsAny(s, "division by zero", "divide by zero", "divided by zero", "zerodivisionerror", "/ by zero")
		},
	},
	{
		Pattern: models.PatternUncaughtException,
		Match: func(s string) bool {
			return containsAny(s, "uncaught", "unhandled", "traceback", "panic:") || exceptionWord.MatchString(s)
		},
	},
}

// DetermineErrorPattern picks a fine-grained pattern for an already typed error.
// Every path ends in a pattern; PatternOther is the catch-all.
func DetermineErrorPattern(errType models.ErrorType, statusMessage, errorMessage, code, expected, actual string) models.ErrorPattern {
	text := strings.ToLower(statusMessage + "\n" + errorMessage)

	switch errType {
	case models.ErrorTypeRuntime:
		for _, rule := range runtimeRules {
			if rule.Match(text) {
				return rule.Pattern
			}
		}

	case models.ErrorTypeWrongAnswer:
		if expected != "" && actual != "" {
			return AnalyzeOutputDifference(expected, actual)
		}
		if offByOneComparison.MatchString(code) {
			return models.PatternOffByOne
		}
		if whileKeyword.MatchString(code) && !breakKeyword.MatchString(code) {
			return models.PatternInfiniteLoop
		}

	case models.ErrorTypeTimeLimit:
		// Crude nested-loop proxy: two occurrences of "for" anywhere in the
		// source, comments and identifiers included.
		if strings.Count(code, "for") >= 2 {
			return models.PatternAlgorithmError
		}
		return models.PatternInfiniteLoop

	case models.ErrorTypeCompilation:
		switch {
		case containsAny(text, "type", "cannot convert"):
			return models.PatternTypeError
		case containsAny(text, "undeclared", "undefined", "not defined"):
			return models.PatternUndefinedVariable
		case containsAny(text, "assignment", "cannot assign"):
			return models.PatternAssignmentError
		}
	}

	switch errType {
	case models.ErrorTypeSyntax:
		return models.PatternTypeError
	case models.ErrorTypeLogical:
		return models.PatternIncorrectLogic
	case models.ErrorTypeMemoryLimit:
		return models.PatternAlgorithmError
	default:
		return models.PatternOther
	}
}

// AnalyzeOutputDifference compares the expected and actual output of a
// failed test and guesses which mistake produced the difference.
func AnalyzeOutputDifference(expected, actual string) models.ErrorPattern {
	exp := strings.TrimSpace(expected)
	act := strings.TrimSpace(actual)
	if exp == act {
		return models.PatternOther
	}

	expNums := extractIntegers(exp)
	actNums := extractIntegers(act)

	if len(expNums) > 0 && len(expNums) == len(actNums) {
		offByOne := 0
		for i := range expNums {
			if absDiff(expNums[i], actNums[i]) == 1 {
				offByOne++
			}
		}
		if float64(offByOne)/float64(len(expNums)) >= offByOneRatio {
			return models.PatternOffByOne
		}
	}

	switch exp {
	case "0", "1", "-1":
		return models.PatternEdgeCase
	}

	if len(expNums) > 0 && len(actNums) > 0 {
		lastExp := expNums[len(expNums)-1]
		lastAct := actNums[len(actNums)-1]
		if absDiff(lastExp, lastAct) == 1 || (lastExp == 0) != (lastAct == 0) {
			return models.PatternBoundaryCondition
		}
	}

	return models.PatternIncorrectLogic
}

// extractIntegers returns every integer token in s. Tokens too large for
// int64 are skipped.
func extractIntegers(s string) []int64 {
	tokens := integerToken.FindAllString(s, -1)
	nums := make([]int64, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
