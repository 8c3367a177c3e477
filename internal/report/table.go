package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 3

// table renders a GitHub-flavoured markdown table padded to display width,
// so Indonesian names with wide runes stay aligned in a terminal.
type table struct {
	header []string
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	colCount := len(t.header)
	for _, row := range t.rows {
		colCount = max(colCount, len(row))
	}

	widths := make([]int, colCount)
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := range colCount {
			content := ""
			if i < len(row) {
				content = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(content, widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(t.header)

	sb.WriteString("|")
	for i := range colCount {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat("-", widths[i]))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		writeRow(row)
	}

	return sb.String()
}
