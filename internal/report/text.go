package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// RenderText writes an aligned table with one share bar per pattern.
func RenderText(w io.Writer, s Summary, useColor bool) error {
	if len(s.Patterns) == 0 {
		_, err := fmt.Fprintln(w, "No analyses recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tCOUNT\tPROBLEMS\tLAST SEEN\tSHARE")
	for _, row := range s.Patterns {
		bar := shareBar(row.Count, s.Total, defaultBarWidth)
		if useColor {
			bar = colorBar(bar, percentage(row.Count, s.Total))
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", row.Pattern, row.Count, row.Problems, formatSeen(row.LastSeen), bar)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d analyses across %d patterns\n", s.Total, len(s.Patterns))
	return err
}
