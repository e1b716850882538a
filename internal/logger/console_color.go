package logger

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/harrison/verdict/internal/models"
)

// colorScheme defines consistent colors for analysis output.
// Red: crashes
// Yellow: wrong answers and resource limits
// Magenta: compilation problems
// Cyan: labels and identifiers
type colorScheme struct {
	crash   *color.Color
	wrong   *color.Color
	compile *color.Color
	label   *color.Color
	value   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		crash:   color.New(color.FgRed, color.Bold),
		wrong:   color.New(color.FgYellow),
		compile: color.New(color.FgMagenta),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// typeColor picks the color for an error type.
func (s *colorScheme) typeColor(t models.ErrorType) *color.Color {
	switch t {
	case models.ErrorTypeRuntime:
		return s.crash
	case models.ErrorTypeWrongAnswer, models.ErrorTypeTimeLimit, models.ErrorTypeMemoryLimit, models.ErrorTypeLogical:
		return s.wrong
	case models.ErrorTypeCompilation, models.ErrorTypeSyntax:
		return s.compile
	default:
		return s.value
	}
}

// formatAnalysisLine renders the summary of an analysis, colorized when
// useColor is set. Problem identity is appended as "problem=<id>".
func formatAnalysisLine(a models.ErrorAnalysis, useColor bool) string {
	line := a.Summary()
	if id := a.ProblemID(); id != "" {
		line += " problem=" + id
	}
	if !useColor {
		return line
	}

	scheme := newColorScheme()
	head := scheme.typeColor(a.ErrorType).Sprint(a.ErrorType)
	if a.ErrorPattern.IsSet() {
		head += "/" + scheme.label.Sprint(a.ErrorPattern)
	}
	out := head
	if a.ErrorCategory != "" {
		out += fmt.Sprintf(" (%s)", a.ErrorCategory)
	}
	if l, ok := a.Line(); ok {
		out += fmt.Sprintf(" line %s", scheme.value.Sprint(l))
	}
	if id := a.ProblemID(); id != "" {
		out += " " + scheme.label.Sprint("problem") + "=" + id
	}
	return out
}
