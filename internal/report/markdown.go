package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// RenderMarkdown writes a GitHub-flavoured Markdown report: a pattern table
// followed by the recorded examples of each pattern.
func RenderMarkdown(w io.Writer, s Summary) error {
	var b bytes.Buffer

	b.WriteString("# Error pattern report\n\n")
	fmt.Fprintf(&b, "Generated %s from %d analyses.\n\n", s.GeneratedAt.Format(time.RFC3339), s.Total)

	if len(s.Patterns) == 0 {
		b.WriteString("No analyses recorded.\n")
		_, err := w.Write(b.Bytes())
		return err
	}

	b.WriteString("| Pattern | Count | Share | Problems | Last seen |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, row := range s.Patterns {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% | %d | %s |\n",
			cellEscaper.Replace(row.Pattern), row.Count, row.Share*100, row.Problems, formatSeen(row.LastSeen))
	}

	for _, row := range s.Patterns {
		if len(row.Examples) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", row.Pattern)
		for _, ex := range row.Examples {
			fmt.Fprintf(&b, "- `%s`\n", strings.ReplaceAll(cellEscaper.Replace(ex), "`", "'"))
		}
	}

	_, err := w.Write(b.Bytes())
	return err
}

// RenderHTML converts the Markdown report to a standalone HTML page.
// Raw HTML inside examples is not passed through.
func RenderHTML(w io.Writer, s Summary) error {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, s); err != nil {
		return err
	}

	var body bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := converter.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to convert report to HTML: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Error pattern report</title>\n</head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}

// RenderJSON writes s as indented JSON.
func RenderJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
