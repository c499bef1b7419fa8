package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders aligned columns. The first column is left-aligned, the rest
// right-aligned.
type Table struct {
	Headers []string
	Rows    [][]string
	// Styled applies the header colour. Leave false for plain output.
	Styled bool
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// String renders the table, one line per row, separated from the header by
// a rule.
func (t *Table) String() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var sb strings.Builder

	header := t.line(t.Headers, widths)
	if t.Styled {
		header = HeaderStyle.Render(header)
	}
	sb.WriteString(header)
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * max(len(widths)-1, 0)
	sb.WriteString(strings.Repeat("-", total))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(t.line(row, widths))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Table) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}

		style := lipgloss.NewStyle().Width(w)
		if i == 0 {
			style = style.Align(lipgloss.Left)
		} else {
			style = style.Align(lipgloss.Right)
		}
		parts[i] = style.Render(cell)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
