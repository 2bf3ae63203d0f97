package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
// The active Mode tells lipgloss which side to render.
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps detail and popover content areas.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HighlightedRowStyle emphasizes the row a notification navigated to.
var HighlightedRowStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow)

// ErrorStyle renders user-visible error lines.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// UnreadStyle marks unread notifications and emails.
var UnreadStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// DimmedStyle de-emphasizes read or secondary rows.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OptimisticStyle marks a locally fabricated thread entry awaiting
// server confirmation.
var OptimisticStyle = lipgloss.NewStyle().
	Italic(true).
	Foreground(ColorGray)

// FailedStyle marks an undelivered thread entry.
var FailedStyle = lipgloss.NewStyle().
	Italic(true).
	Foreground(ColorRed)

// ExecutionStatusStyle returns a color-coded style for an execution
// status (PENDING, PASSED, FAILED).
func ExecutionStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "PENDING":
		return base.Foreground(ColorYellow)
	case "PASSED":
		return base.Foreground(ColorGreen)
	case "FAILED":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// CriticalityStyle returns a color-coded style for an anomaly
// criticality level.
func CriticalityStyle(criticality string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch criticality {
	case "CRITIQUE":
		return base.Foreground(ColorRed)
	case "MOYENNE":
		return base.Foreground(ColorOrange)
	case "FAIBLE":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationStyle returns a color-coded style for a notification
// type label.
func NotificationStyle(notificationType string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch notificationType {
	case "campaign_assignment":
		return base.Foreground(ColorBlue)
	case "execution_validated":
		return base.Foreground(ColorGreen)
	case "anomaly_reported":
		return base.Foreground(ColorRed)
	case "comment_posted":
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}
