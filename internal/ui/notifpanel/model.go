// Package notifpanel renders the notification popover. The panel is a
// read-only projection of the feed; selecting an entry asks the feed
// to resolve it into a navigation target.
package notifpanel

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insuretm/console/internal/feed"
	"github.com/insuretm/console/internal/keys"
	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/theme"
)

// CloseMsg asks the parent to dismiss the panel.
type CloseMsg struct{}

// MarkAllMsg asks the parent to mark every notification read.
type MarkAllMsg struct{}

// Model is the notification popover.
type Model struct {
	notifications []model.Notification
	cursor        int
	width         int
	height        int
	keys          keys.KeyMap
}

// New creates an empty panel.
func New(km keys.KeyMap, width, height int) Model {
	return Model{keys: km, width: width, height: height}
}

// SetNotifications replaces the panel contents, keeping the cursor in
// bounds.
func (m *Model) SetNotifications(ns []model.Notification) {
	m.notifications = ns
	if m.cursor >= len(ns) {
		m.cursor = len(ns) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles navigation inside the panel. Selecting an entry
// returns the feed's click command; the parent receives the resulting
// feed.ClickedMsg.
func (m Model) Update(msg tea.Msg, f *feed.Feed) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "N":
		return m, func() tea.Msg { return CloseMsg{} }
	case "down", "j":
		if m.cursor < len(m.notifications)-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		return m, func() tea.Msg { return MarkAllMsg{} }
	case "enter":
		if m.cursor < len(m.notifications) && f != nil {
			return m, f.Click(m.notifications[m.cursor])
		}
	}
	return m, nil
}

// View renders the popover.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Notifications")

	if len(m.notifications) == 0 {
		body := theme.DimmedStyle.Render("No notifications")
		return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	lines := make([]string, 0, len(m.notifications)+2)
	lines = append(lines, title)
	for i, n := range m.notifications {
		line := m.renderEntry(n)
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, theme.HelpStyle.Render("enter open · a mark all read · esc close"))

	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderEntry(n model.Notification) string {
	marker := "  "
	if !n.IsRead {
		marker = theme.UnreadStyle.Render("● ")
	}
	label := theme.NotificationStyle(string(n.Type)).Render(n.Title)
	when := theme.DimmedStyle.Render(n.CreatedAt.Format("Jan 2 15:04"))
	return fmt.Sprintf("%s%s  %s\n  %s", marker, label, when, n.Message)
}
