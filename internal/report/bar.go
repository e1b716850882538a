package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// defaultBarWidth is the number of cells in a share bar.
const defaultBarWidth = 10

// shareBar renders count/total as a fixed-width bar, e.g. "[======    ]  60%".
func shareBar(count, total, width int) string {
	if width < 1 {
		width = defaultBarWidth
	}

	perc := percentage(count, total)
	filled := (perc * width) / 100

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strings.Repeat("=", filled))
	b.WriteString(strings.Repeat(" ", width-filled))
	b.WriteByte(']')
	return fmt.Sprintf("%s %3d%%", b.String(), perc)
}

// percentage returns count/total as a whole percentage clamped to 0-100.
func percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	perc := (count * 100) / total
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	return perc
}

// colorBar highlights dominant patterns in red and the rest in cyan.
func colorBar(bar string, perc int) string {
	if perc >= 50 {
		return color.New(color.FgRed).Sprint(bar)
	}
	return color.New(color.FgCyan).Sprint(bar)
}
