package models

import "strings"

// Language identifies the submission language for line extraction rules.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageUnknown    Language = "unknown"
)

// ParseLanguage maps a judge's language label to a Language.
// Labels such as "GNU C++17", "Python 3", "PyPy3", "Node.js" and "C#" are
// understood; anything else is LanguageUnknown.
func ParseLanguage(label string) Language {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return LanguageUnknown
	case strings.Contains(l, "typescript") || l == "ts":
		return LanguageTypeScript
	case strings.Contains(l, "javascript") || strings.Contains(l, "node") || l == "js":
		return LanguageJavaScript
	case strings.Contains(l, "python") || strings.Contains(l, "pypy") || l == "py":
		return LanguagePython
	case strings.Contains(l, "c#") || strings.Contains(l, "csharp") || strings.Contains(l, "mono") || strings.Contains(l, ".net"):
		return LanguageCSharp
	case strings.Contains(l, "c++") || strings.Contains(l, "cpp") || strings.Contains(l, "g++") || strings.Contains(l, "clang"):
		return LanguageCPP
	case strings.Contains(l, "kotlin"):
		// Kotlin stack traces are not Java traces even though both run on the JVM.
		return LanguageUnknown
	case strings.Contains(l, "java"):
		return LanguageJava
	case l == "go" || strings.HasPrefix(l, "go ") || strings.Contains(l, "golang"):
		return LanguageGo
	default:
		return LanguageUnknown
	}
}
