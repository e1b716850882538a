package analyzer

import (
	"fmt"
	"strings"
)

// DefaultContextRadius is the number of lines shown on each side of the error line.
const DefaultContextRadius = 2

// ErrorLineMarker prefixes the offending line in a snippet.
const ErrorLineMarker = "▶"

// ExtractCodeSnippet returns the lines around lineNumber, each prefixed with
// its 1-based number, with the error line marked. It returns "" when
// lineNumber is outside [1, lineCount(code)].
func ExtractCodeSnippet(code string, lineNumber, radius int) string {
	if code == "" {
		return ""
	}
	if radius < 0 {
		radius = 0
	}

	lines := splitLines(code)
	if lineNumber < 1 || lineNumber > len(lines) {
		return ""
	}

	start := max(lineNumber-radius, 1)
	end := min(lineNumber+radius, len(lines))
	width := len(fmt.Sprint(end))

	var b strings.Builder
	for n := start; n <= end; n++ {
		marker := " "
		if n == lineNumber {
			marker = ErrorLineMarker
		}
		fmt.Fprintf(&b, "%s %*d | %s", marker, width, n, lines[n-1])
		if n < end {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func splitLines(code string) []string {
	return strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
}

// lineCount returns the number of lines in code; empty code has none.
func lineCount(code string) int {
	if code == "" {
		return 0
	}
	return len(splitLines(code))
}
