// Package report renders differences for people: an aligned terminal
// table and overlay boxes drawn onto a page screenshot.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/hazyhaar/slotdiff/diff"
	"github.com/hazyhaar/slotdiff/schedule"
)

// ANSI colours per difference type.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

// maxCell truncates long slot texts in the table.
const maxCell = 32

// TableOptions controls WriteTable.
type TableOptions struct {
	Color  bool
	Labels schedule.Labels
}

func colorOf(t schedule.DiffType) string {
	switch t {
	case schedule.Added:
		return colorGreen
	case schedule.Removed:
		return colorRed
	case schedule.Changed:
		return colorYellow
	}
	return ""
}

// WriteTable prints one row per difference followed by a summary line.
// Columns are padded by display width so CJK texts line up.
func WriteTable(w io.Writer, diffs []schedule.Difference, opts TableOptions) error {
	if opts.Labels == (schedule.Labels{}) {
		opts.Labels = schedule.English
	}
	bw := bufio.NewWriter(w)
	if len(diffs) == 0 {
		fmt.Fprintln(bw, opts.Labels.NoDiff)
		return bw.Flush()
	}

	header := []string{"TYPE", "KEY", "OLD", "NEW", "COLOR"}
	rows := make([][]string, 0, len(diffs))
	for _, d := range diffs {
		rows = append(rows, []string{
			string(d.Type),
			d.Key,
			truncate(d.Old()),
			truncate(d.New()),
			colorCell(d),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	line := func(cells []string, prefix string) {
		var b strings.Builder
		b.WriteString(prefix)
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(c)
			} else {
				b.WriteString(runewidth.FillRight(c, widths[i]))
			}
		}
		if prefix != "" {
			b.WriteString(colorReset)
		}
		fmt.Fprintln(bw, strings.TrimRight(b.String(), " "))
	}

	bold := ""
	if opts.Color {
		bold = colorBold
	}
	line(header, bold)
	for i, r := range rows {
		prefix := ""
		if opts.Color {
			prefix = colorOf(diffs[i].Type)
		}
		line(r, prefix)
	}

	s := diff.Summarize(diffs)
	fmt.Fprintf(bw, "\n%d differences: %d added, %d removed, %d changed\n", s.Total, s.Added, s.Removed, s.Changed)
	return bw.Flush()
}

// colorCell shows a colour change, or the single colour of an added or
// removed slot.
func colorCell(d schedule.Difference) string {
	switch {
	case d.OldColor == d.NewColor:
		return ""
	case d.OldColor == "":
		return d.NewColor
	case d.NewColor == "":
		return d.OldColor
	}
	return d.OldColor + " → " + d.NewColor
}

func truncate(s string) string {
	if runewidth.StringWidth(s) <= maxCell {
		return s
	}
	return runewidth.Truncate(s, maxCell, "…")
}
