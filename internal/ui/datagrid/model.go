// Package datagrid is the shared table screen used by every CRUD
// resource view: executions, anomalies, campaigns, releases, users,
// emails and their admin variants. Screens differ only in columns,
// loader, and row actions, which the parent supplies.
package datagrid

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insuretm/console/internal/keys"
	"github.com/insuretm/console/internal/theme"
)

// Column describes one table column.
type Column struct {
	Title string
	Width int
}

// Row is one resource row: the server id plus rendered cells.
type Row struct {
	ID    int64
	Cells []string
}

// LoadedMsg delivers the rows for a screen. Path and Gen let the
// parent drop results that arrive after the user navigated away.
type LoadedMsg struct {
	Path string
	Gen  int
	Rows []Row
	Err  error
}

// DeleteRequestMsg asks the parent to delete the selected row after
// the user confirmed the prompt.
type DeleteRequestMsg struct {
	Path string
	ID   int64
}

// Model is the table screen.
type Model struct {
	table     table.Model
	rows      []Row
	keys      *keys.KeyMap
	loading   bool
	errText   string
	highlight int64
	deletable bool

	// confirming is non-zero while the delete prompt for that row id
	// is on screen.
	confirming int64

	width  int
	height int
}

// New creates a datagrid with the given columns.
func New(columns []Column, k *keys.KeyMap, deletable bool, width, height int) Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(height-4),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true)
	styles.Selected = theme.SelectedItemStyle
	t.SetStyles(styles)

	return Model{
		table:     t,
		keys:      k,
		deletable: deletable,
		width:     width,
		height:    height,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if height > 4 {
		m.table.SetHeight(height - 4)
	}
}

// StartLoading clears the grid and shows the loading placeholder.
func (m *Model) StartLoading() {
	m.loading = true
	m.errText = ""
	m.confirming = 0
}

// SetRows replaces the table contents. When a highlight id was set the
// cursor jumps to that row.
func (m *Model) SetRows(rows []Row) {
	m.loading = false
	m.errText = ""
	m.rows = rows

	tableRows := make([]table.Row, len(rows))
	highlightIdx := -1
	for i, r := range rows {
		tableRows[i] = table.Row(r.Cells)
		if m.highlight != 0 && r.ID == m.highlight {
			highlightIdx = i
		}
	}
	m.table.SetRows(tableRows)

	if highlightIdx >= 0 {
		m.table.SetCursor(highlightIdx)
	}
}

// SetError shows a non-fatal load error in place of the rows.
func (m *Model) SetError(err error) {
	m.loading = false
	m.errText = err.Error()
}

// SetHighlight records the row id a notification asked to emphasize.
func (m *Model) SetHighlight(id int64) {
	m.highlight = id
}

// Highlight returns the currently highlighted row id, zero when none.
func (m *Model) Highlight() int64 {
	return m.highlight
}

// SelectedID returns the id of the row under the cursor.
func (m *Model) SelectedID() (int64, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return 0, false
	}
	return m.rows[idx].ID, true
}

// Update handles table navigation and the delete confirmation prompt.
func (m Model) Update(msg tea.Msg, path string) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	// While the confirmation prompt is visible only y/n are live. A
	// destructive request is never issued without the explicit "y".
	if m.confirming != 0 {
		switch keyMsg.String() {
		case "y", "Y":
			id := m.confirming
			m.confirming = 0
			return m, func() tea.Msg {
				return DeleteRequestMsg{Path: path, ID: id}
			}
		case "n", "N", "esc":
			m.confirming = 0
		}
		return m, nil
	}

	if m.deletable && keyMsg.String() == "d" {
		if id, ok := m.SelectedID(); ok {
			m.confirming = id
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the grid, the loading placeholder, or the load error.
func (m Model) View() string {
	if m.loading {
		return theme.HelpStyle.Render("Loading...")
	}
	if m.errText != "" {
		return theme.ErrorStyle.Render("Could not load data: " + m.errText)
	}

	out := m.table.View()
	if m.confirming != 0 {
		out += "\n" + theme.ErrorStyle.Render("Delete selected row? (y/n)")
	} else if m.highlight != 0 {
		out += "\n" + theme.HighlightedRowStyle.Render("highlighted row from notification")
	}
	return out
}
