package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/launchpad/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data  []string
	Style lipgloss.Style
}

// Table renders rows of text in fixed-width columns.
type Table struct {
	columns []TableColumn
	rows    []TableRow

	headerStyle lipgloss.Style
	rowStyle    lipgloss.Style
	borderStyle lipgloss.Style

	showBorder bool
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
	}
}

// AddColumn adds a column. A zero width sizes the column to its widest cell.
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(data ...string) *Table {
	t.rows = append(t.rows, TableRow{Data: data, Style: t.rowStyle})
	return t
}

// AddStyledRow adds a row rendered with s instead of the default row style.
func (t *Table) AddStyledRow(s lipgloss.Style, data ...string) *Table {
	t.rows = append(t.rows, TableRow{Data: data, Style: s.Padding(0, 1)})
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return ""
	}
	widths := t.columnWidths()

	var content strings.Builder
	for i, col := range t.columns {
		content.WriteString(t.renderCell(col.Header, widths[i], col.Align, t.headerStyle))
		if i < len(t.columns)-1 {
			content.WriteString("│")
		}
	}
	content.WriteString("\n")
	for i := range t.columns {
		content.WriteString(strings.Repeat("─", widths[i]))
		if i < len(t.columns)-1 {
			content.WriteString("┼")
		}
	}

	for _, row := range t.rows {
		content.WriteString("\n")
		for i, col := range t.columns {
			cell := ""
			if i < len(row.Data) {
				cell = row.Data[i]
			}
			content.WriteString(t.renderCell(cell, widths[i], col.Align, row.Style))
			if i < len(t.columns)-1 {
				content.WriteString("│")
			}
		}
	}

	result := content.String()
	if t.showBorder {
		result = t.borderStyle.Render(result)
	}
	return result
}

// renderCell renders a single table cell
func (t *Table) renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	inner := width - style.GetHorizontalPadding()
	if inner > 0 && lipgloss.Width(content) > inner {
		if inner > 3 {
			content = content[:inner-3] + "..."
		} else {
			content = content[:inner]
		}
	}
	return style.Width(width).Align(align).Render(content)
}

// columnWidths fills in widths of auto-sized columns, padding included.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	pad := t.rowStyle.GetHorizontalPadding()
	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			continue
		}
		w := lipgloss.Width(col.Header)
		for _, row := range t.rows {
			if i < len(row.Data) && lipgloss.Width(row.Data[i]) > w {
				w = lipgloss.Width(row.Data[i])
			}
		}
		widths[i] = w + pad
	}
	return widths
}
