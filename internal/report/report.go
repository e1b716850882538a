// Package report renders pattern frequency summaries as text, Markdown,
// HTML or JSON, and writes them to disk safely.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/verdict/internal/frequency"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or one of its short aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, markdown, html or json)", s)
}

// FormatFromPath guesses a format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	f, err := ParseFormat(ext)
	if err != nil {
		return FormatText
	}
	return f
}

// Row is one pattern line of a Summary.
type Row struct {
	Pattern  string    `json:"pattern"`
	Count    int       `json:"count"`
	Share    float64   `json:"share"`
	Problems int       `json:"problems"`
	LastSeen time.Time `json:"lastSeen"`
	Examples []string  `json:"examples,omitempty"`
}

// Summary is a rendered-independent view of the pattern store.
type Summary struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Total       int       `json:"total"`
	Patterns    []Row     `json:"patterns"`
}

// Build turns top-pattern snapshots into a Summary. The input order is kept.
func Build(counts []frequency.PatternCount, now time.Time) Summary {
	s := Summary{GeneratedAt: now.UTC(), Patterns: make([]Row, 0, len(counts))}
	for _, pc := range counts {
		s.Total += pc.Count
	}
	for _, pc := range counts {
		row := Row{
			Pattern:  pc.Pattern,
			Count:    pc.Count,
			Problems: len(pc.Problems),
			LastSeen: pc.LastSeen,
			Examples: pc.Examples,
		}
		if s.Total > 0 {
			row.Share = float64(pc.Count) / float64(s.Total)
		}
		s.Patterns = append(s.Patterns, row)
	}
	return s
}

// Render writes s in format f. Text output is never coloured here; use
// RenderText for terminal output.
func Render(w io.Writer, f Format, s Summary) error {
	switch f {
	case FormatText:
		return RenderText(w, s, false)
	case FormatMarkdown:
		return RenderMarkdown(w, s)
	case FormatHTML:
		return RenderHTML(w, s)
	case FormatJSON:
		return RenderJSON(w, s)
	}
	return fmt.Errorf("unknown report format %q", f)
}

func formatSeen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
