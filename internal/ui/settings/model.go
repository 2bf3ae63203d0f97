// Package settings is the preferences screen: theme switching and
// feed-wide actions.
package settings

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/theme"
)

// ThemeToggledMsg reports the mode now in effect.
type ThemeToggledMsg struct {
	Mode theme.Mode
}

// MarkAllReadMsg asks the parent to mark every notification read.
type MarkAllReadMsg struct{}

// Model is the settings screen.
type Model struct {
	themes  *theme.Manager
	user    *model.User
	errText string
	width   int
	height  int
}

// New creates the settings screen.
func New(themes *theme.Manager, width, height int) Model {
	return Model{themes: themes, width: width, height: height}
}

// SetUser records whose preferences are shown.
func (m *Model) SetUser(u *model.User) {
	m.user = u
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles the settings keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "t", "T":
		mode, err := m.themes.Toggle()
		if err != nil {
			// The new mode is live either way; only persistence failed.
			m.errText = "Could not save theme preference: " + err.Error()
		} else {
			m.errText = ""
		}
		return m, func() tea.Msg { return ThemeToggledMsg{Mode: mode} }
	case "a":
		return m, func() tea.Msg { return MarkAllReadMsg{} }
	}
	return m, nil
}

// View renders the settings screen.
func (m Model) View() string {
	lines := []string{theme.HeaderStyle.Render("Settings")}

	if m.user != nil {
		lines = append(lines,
			fmt.Sprintf("Signed in as %s (%s)", m.user.DisplayName(), m.user.Role))
	}

	lines = append(lines,
		fmt.Sprintf("Theme: %s", m.themes.Mode()),
		"",
		theme.HelpStyle.Render("t toggle theme · a mark all notifications read"),
	)

	if m.errText != "" {
		lines = append(lines, theme.ErrorStyle.Render(m.errText))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
