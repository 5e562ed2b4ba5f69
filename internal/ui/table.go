package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	// Right aligns numeric columns such as vote counts and amounts.
	Right bool
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
	// Marked rows are flagged with a star, e.g. the current leader.
	Marked map[int]bool
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Mark flags row i.
func (t *Table) Mark(i int) {
	if t.Marked == nil {
		t.Marked = map[int]bool{}
	}
	t.Marked[i] = true
}

// fit pads or truncates s to exactly width display cells. Cells are padded
// by hand instead of with lipgloss Width, which wraps content that does not
// fit.
func fit(s string, width int, right bool) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	gap := strings.Repeat(" ", width-len(r))
	if right {
		return gap + s
	}
	return s + gap
}

// Render returns the full table as a string.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	gutter := "  "
	if len(t.Marked) > 0 {
		gutter = "   "
	}

	var headers []string
	for _, col := range t.Columns {
		headers = append(headers, headerStyle.Render(fit(col.Title, col.Width, col.Right)))
	}
	sb.WriteString(gutter + strings.Join(headers, " ") + "\n")

	var divParts []string
	for _, col := range t.Columns {
		divParts = append(divParts, dimStyle.Render(strings.Repeat("─", col.Width)))
	}
	sb.WriteString(gutter + strings.Join(divParts, " ") + "\n")

	for i, row := range t.Rows {
		var cells []string
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cell := fit(val, col.Width, col.Right)
			if i == t.SelIdx {
				cells = append(cells, StyleSelected.Render(cell))
			} else {
				cells = append(cells, cellStyle.Render(cell))
			}
		}
		lead := "  "
		if i == t.SelIdx {
			lead = "▸ "
		}
		if len(t.Marked) > 0 {
			if t.Marked[i] {
				lead += StyleWarning.Render("★")
			} else {
				lead += " "
			}
		}
		sb.WriteString(lead + strings.Join(cells, " ") + "\n")
	}

	return sb.String()
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
// Values may already be styled.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-18s", p[0]+":"))
		sb.WriteString("  " + key + " " + p[1] + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
