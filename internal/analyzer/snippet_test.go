package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCodeSnippet(t *testing.T) {
	code := "a\nb\nc\nd\ne"

	tests := []struct {
		name   string
		code   string
		line   int
		radius int
		want   string
	}{
		{"middle", code, 3, 1, "  2 | b\n▶ 3 | c\n  4 | d"},
		{"first line clamps start", code, 1, 2, "▶ 1 | a\n  2 | b\n  3 | c"},
		{"last line clamps end", code, 5, 2, "  3 | c\n  4 | d\n▶ 5 | e"},
		{"zero radius", code, 2, 0, "▶ 2 | b"},
		{"crlf line endings", "x\r\ny\r\nz", 2, 1, "  1 | x\n▶ 2 | y\n  3 | z"},
		{"line zero", code, 0, 2, ""},
		{"negative line", code, -1, 2, ""},
		{"past the end", code, 6, 2, ""},
		{"empty code", "", 1, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCodeSnippet(tt.code, tt.line, tt.radius))
		})
	}
}

func TestExtractCodeSnippetPadsLineNumbers(t *testing.T) {
	code := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nl11\nl12"
	got := ExtractCodeSnippet(code, 10, 2)
	assert.Equal(t, "   8 | l8\n   9 | l9\n▶ 10 | l10\n  11 | l11\n  12 | l12", got)
}
