package analyzer

import (
	"regexp"
	"strings"

	"github.com/harrison/verdict/internal/models"
)

var (
	dataStructureKeyword = regexp.MustCompile(`(?i)\b(array|list|map|set|queue|stack|heap)\b`)
	loopKeyword          = regexp.MustCompile(`\b(for|while|do|foreach)\b`)
	conditionalKeyword   = regexp.MustCompile(`\b(if|else|elif|switch|case)\b`)
	functionDeclaration  = regexp.MustCompile(`\b(?:function|def)\s+([A-Za-z_$][\w$]*)`)
)

// PatternCategory maps every pattern to its category. The unset pattern
// reports false.
func PatternCategory(p models.ErrorPattern) (models.ErrorCategory, bool) {
	switch p {
	case models.PatternOffByOne:
		return models.CategoryLoops, true
	case models.PatternNullPointer:
		return models.CategoryVariableManagement, true
	case models.PatternEdgeCase:
		return models.CategoryEdgeCases, true
	case models.PatternBoundaryCondition:
		return models.CategoryEdgeCases, true
	case models.PatternInfiniteLoop:
		return models.CategoryLoops, true
	case models.PatternArrayOutOfBounds:
		return models.CategoryDataStructures, true
	case models.PatternStackOverflow:
		return models.CategoryRecursion, true
	case models.PatternIncorrectLogic:
		return models.CategoryAlgorithms, true
	case models.PatternTypeError:
		return models.CategoryTypeHandling, true
	case models.PatternAssignmentError:
		return models.CategoryVariableManagement, true
	case models.PatternAlgorithmError:
		return models.CategoryOptimization, true
	case models.PatternDivisionByZero:
		return models.CategoryEdgeCases, true
	case models.PatternUncaughtException:
		return models.CategoryErrorHandling, true
	case models.PatternUndefinedVariable:
		return models.CategoryVariableManagement, true
	case models.PatternOther:
		return models.CategoryOther, true
	}
	return "", false
}

// CategorizeError assigns a category from the pattern, falling back to the
// error type and then to keywords found in the source code.
func CategorizeError(p models.ErrorPattern, errType models.ErrorType, code string) models.ErrorCategory {
	if c, ok := PatternCategory(p); ok {
		return c
	}

	switch errType {
	case models.ErrorTypeTimeLimit, models.ErrorTypeMemoryLimit:
		return models.CategoryOptimization
	case models.ErrorTypeCompilation, models.ErrorTypeSyntax:
		return models.CategorySyntax
	}

	switch {
	case dataStructureKeyword.MatchString(code):
		return models.CategoryDataStructures
	case loopKeyword.MatchString(code):
		return models.CategoryLoops
	case conditionalKeyword.MatchString(code) || (strings.Contains(code, "?") && strings.Contains(code, ":")):
		return models.CategoryConditionals
	case isRecursive(code):
		return models.CategoryRecursion
	default:
		return models.CategoryOther
	}
}

// isRecursive reports whether a function declared with "function name" or
// "def name" is called again somewhere in the same source.
func isRecursive(code string) bool {
	for _, m := range functionDeclaration.FindAllStringSubmatch(code, -1) {
		call := regexp.MustCompile(`(?:^|[^\w$])` + regexp.QuoteMeta(m[1]) + `\s*\(`)
		// the declaration itself accounts for one match
		if len(call.FindAllStringIndex(code, -1)) >= 2 {
			return true
		}
	}
	return false
}
