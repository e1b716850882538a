package analyzer

import (
	"regexp"
	"strconv"

	"github.com/harrison/verdict/internal/models"
)

// maxFallbackLine bounds the bare-number fallback so byte counts and test
// numbers in verdict text are not mistaken for line numbers.
const maxFallbackLine = 1000

// lineRule extracts a line (group 1) and optional column (group 2) from error text.
type lineRule struct {
	Name    string
	Pattern *regexp.Regexp
}

var (
	jsRules = []lineRule{
		{Name: "stack-frame", Pattern: regexp.MustCompile(`\.(?:m?js|ts|jsx|tsx):(\d+):(\d+)`)},
		{Name: "line-column", Pattern: regexp.MustCompile(`(?i)line\s+(\d+)(?:\s*,?\s*col(?:umn)?\s+(\d+))?`)},
		{Name: "anonymous", Pattern: regexp.MustCompile(`<anonymous>:(\d+):(\d+)`)},
	}

	pythonRules = []lineRule{
		{Name: "traceback", Pattern: regexp.MustCompile(`File "[^"]*", line (\d+)`)},
		{Name: "line", Pattern: regexp.MustCompile(`(?i)line\s+(\d+)`)},
	}

	javaRules = []lineRule{
		{Name: "stack-frame", Pattern: regexp.MustCompile(`\.java:(\d+)\)`)},
		{Name: "javac", Pattern: regexp.MustCompile(`\.java:(\d+):`)},
		{Name: "line", Pattern: regexp.MustCompile(`(?i)line\s+(\d+)`)},
	}

	cppRules = []lineRule{
		{Name: "gcc", Pattern: regexp.MustCompile(`:(\d+):(\d+):\s*(?:fatal )?error`)},
		{Name: "location", Pattern: regexp.MustCompile(`\.(?:cpp|cc|cxx|c|h|hpp):(\d+)(?::(\d+))?`)},
		{Name: "line", Pattern: regexp.MustCompile(`(?i)line\s+(\d+)`)},
	}

	csharpRules = []lineRule{
		{Name: "msbuild", Pattern: regexp.MustCompile(`\((\d+),(\d+)\)`)},
		{Name: "stack-frame", Pattern: regexp.MustCompile(`(?i):line (\d+)`)},
	}

	goRules = []lineRule{
		{Name: "compiler", Pattern: regexp.MustCompile(`\.go:(\d+):(\d+)`)},
		{Name: "panic-frame", Pattern: regexp.MustCompile(`\.go:(\d+)`)},
	}

	fallbackNumber = regexp.MustCompile(`\b(\d+)\b`)
)

// lineRules maps every language to its ordered extraction rules.
// LanguageUnknown has an explicit entry rather than relying on a map miss.
var lineRules = map[models.Language][]lineRule{
	models.LanguageJavaScript: jsRules,
	models.LanguageTypeScript: jsRules,
	models.LanguagePython:     pythonRules,
	models.LanguageJava:       javaRules,
	models.LanguageCPP:        cppRules,
	models.LanguageCSharp:     csharpRules,
	models.LanguageGo:         goRules,
	models.LanguageUnknown:    jsRules,
}

// rulesFor returns the extraction rules for lang.
func rulesFor(lang models.Language) []lineRule {
	if rules, ok := lineRules[lang]; ok {
		return rules
	}
	return lineRules[models.LanguageUnknown]
}

// ExtractLineInfo pulls a line and column number out of raw error text.
// The first matching language rule wins. If none match, the first standalone
// number is used as the line when it lies strictly between 0 and 1000.
func ExtractLineInfo(errorMessage string, lang models.Language) (line, column *int) {
	if errorMessage == "" {
		return nil, nil
	}

	for _, rule := range rulesFor(lang) {
		m := rule.Pattern.FindStringSubmatch(errorMessage)
		if m == nil {
			continue
		}
		line = atoiPtr(m[1])
		if len(m) > 2 {
			column = atoiPtr(m[2])
		}
		if line != nil {
			return line, column
		}
	}

	if m := fallbackNumber.FindStringSubmatch(errorMessage); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < maxFallbackLine {
			return &n, nil
		}
	}
	return nil, nil
}

// atoiPtr converts a captured group, returning nil for empty or invalid input.
func atoiPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
