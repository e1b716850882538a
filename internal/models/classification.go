package models

import "strings"

// ErrorType is the coarse classification of a failed submission.
type ErrorType string

// ErrorType values. UNKNOWN is the fallback for anything unrecognized.
const (
	ErrorTypeSyntax      ErrorType = "SYNTAX"
	ErrorTypeRuntime     ErrorType = "RUNTIME"
	ErrorTypeLogical     ErrorType = "LOGICAL"
	ErrorTypeTimeLimit   ErrorType = "TIME_LIMIT"
	ErrorTypeMemoryLimit ErrorType = "MEMORY_LIMIT"
	ErrorTypeWrongAnswer ErrorType = "WRONG_ANSWER"
	ErrorTypeCompilation ErrorType = "COMPILATION"
	ErrorTypeUnknown     ErrorType = "UNKNOWN"
)

// AllErrorTypes lists every ErrorType in declaration order.
var AllErrorTypes = []ErrorType{
	ErrorTypeSyntax,
	ErrorTypeRuntime,
	ErrorTypeLogical,
	ErrorTypeTimeLimit,
	ErrorTypeMemoryLimit,
	ErrorTypeWrongAnswer,
	ErrorTypeCompilation,
	ErrorTypeUnknown,
}

// Valid reports whether t is one of the declared error types.
func (t ErrorType) Valid() bool {
	switch t {
	case ErrorTypeSyntax, ErrorTypeRuntime, ErrorTypeLogical, ErrorTypeTimeLimit,
		ErrorTypeMemoryLimit, ErrorTypeWrongAnswer, ErrorTypeCompilation, ErrorTypeUnknown:
		return true
	default:
		return false
	}
}

// ParseErrorType converts s (case-insensitive) to an ErrorType.
// Unrecognized input maps to ErrorTypeUnknown.
func ParseErrorType(s string) ErrorType {
	t := ErrorType(strings.ToUpper(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return ErrorTypeUnknown
}

// ErrorPattern is the fine-grained classification of a failure.
// The zero value means no pattern was detected.
type ErrorPattern string

// ErrorPattern values.
const (
	PatternOffByOne          ErrorPattern = "OFF_BY_ONE"
	PatternNullPointer       ErrorPattern = "NULL_POINTER"
	PatternEdgeCase          ErrorPattern = "EDGE_CASE"
	PatternBoundaryCondition ErrorPattern = "BOUNDARY_CONDITION"
	PatternInfiniteLoop      ErrorPattern = "INFINITE_LOOP"
	PatternArrayOutOfBounds  ErrorPattern = "ARRAY_OUT_OF_BOUNDS"
	PatternStackOverflow     ErrorPattern = "STACK_OVERFLOW"
	PatternIncorrectLogic    ErrorPattern = "INCORRECT_LOGIC"
	PatternTypeError         ErrorPattern = "TYPE_ERROR"
	PatternAssignmentError   ErrorPattern = "ASSIGNMENT_ERROR"
	PatternAlgorithmError    ErrorPattern = "ALGORITHM_ERROR"
	PatternDivisionByZero    ErrorPattern = "DIVISION_BY_ZERO"
	PatternUncaughtException ErrorPattern = "UNCAUGHT_EXCEPTION"
	PatternUndefinedVariable ErrorPattern = "UNDEFINED_VARIABLE"
	PatternOther             ErrorPattern = "OTHER"
)

// AllErrorPatterns lists every ErrorPattern in declaration order.
var AllErrorPatterns = []ErrorPattern{
	PatternOffByOne,
	PatternNullPointer,
	PatternEdgeCase,
	PatternBoundaryCondition,
	PatternInfiniteLoop,
	PatternArrayOutOfBounds,
	PatternStackOverflow,
	PatternIncorrectLogic,
	PatternTypeError,
	PatternAssignmentError,
	PatternAlgorithmError,
	PatternDivisionByZero,
	PatternUncaughtException,
	PatternUndefinedVariable,
	PatternOther,
}

// Valid reports whether p is a declared pattern. The unset pattern is not valid.
func (p ErrorPattern) Valid() bool {
	for _, known := range AllErrorPatterns {
		if p == known {
			return true
		}
	}
	return false
}

// IsSet reports whether a pattern was detected.
func (p ErrorPattern) IsSet() bool {
	return p != ""
}

// Key returns the frequency-bucket key for the pattern ("off_by_one", "other", ...).
func (p ErrorPattern) Key() string {
	return strings.ToLower(string(p))
}

// ParseErrorPattern accepts either the enum name or its bucket key.
// It returns false for anything outside the closed set.
func ParseErrorPattern(s string) (ErrorPattern, bool) {
	p := ErrorPattern(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", false
	}
	return p, true
}

// ErrorCategory groups patterns by the programming concept involved.
// The zero value means no category was assigned.
type ErrorCategory string

// ErrorCategory values.
const (
	CategoryLoops              ErrorCategory = "LOOPS"
	CategoryConditionals       ErrorCategory = "CONDITIONALS"
	CategoryRecursion          ErrorCategory = "RECURSION"
	CategoryDataStructures     ErrorCategory = "DATA_STRUCTURES"
	CategoryAlgorithms         ErrorCategory = "ALGORITHMS"
	CategorySyntax             ErrorCategory = "SYNTAX"
	CategoryOptimization       ErrorCategory = "OPTIMIZATION"
	CategoryVariableManagement ErrorCategory = "VARIABLE_MANAGEMENT"
	CategoryTypeHandling       ErrorCategory = "TYPE_HANDLING"
	CategoryEdgeCases          ErrorCategory = "EDGE_CASES"
	CategoryErrorHandling      ErrorCategory = "ERROR_HANDLING"
	CategoryOther              ErrorCategory = "OTHER"
)

// AllErrorCategories lists every ErrorCategory in declaration order.
var AllErrorCategories = []ErrorCategory{
	CategoryLoops,
	CategoryConditionals,
	CategoryRecursion,
	CategoryDataStructures,
	CategoryAlgorithms,
	CategorySyntax,
	CategoryOptimization,
	CategoryVariableManagement,
	CategoryTypeHandling,
	CategoryEdgeCases,
	CategoryErrorHandling,
	CategoryOther,
}

// Valid reports whether c is a declared category.
func (c ErrorCategory) Valid() bool {
	for _, known := range AllErrorCategories {
		if c == known {
			return true
		}
	}
	return false
}
