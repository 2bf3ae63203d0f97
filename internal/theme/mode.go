package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/insuretm/console/internal/model"
)

// Mode is the process-wide light/dark presentation flag.
type Mode string

const (
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode normalizes a stored theme value. Absent or invalid values
// fall back to dark.
func ParseMode(raw string) Mode {
	if raw == string(ModeLight) {
		return ModeLight
	}
	return ModeDark
}

// Manager owns the presentation mode and its persistence. The mode is
// read once from the config file at startup; every toggle writes the
// new value back synchronously so a restart restores the last choice.
type Manager struct {
	mode       Mode
	cfg        *model.AppConfig
	configPath string
}

// NewManager builds a manager from the loaded configuration and
// applies the stored mode to the style sheet.
func NewManager(cfg *model.AppConfig, configPath string) *Manager {
	m := &Manager{
		mode:       ParseMode(cfg.Display.Theme),
		cfg:        cfg,
		configPath: configPath,
	}
	m.apply()
	return m
}

// Mode returns the active presentation mode.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Toggle flips between light and dark, updates the style sheet, and
// writes the choice to the config file before returning. The returned
// mode is already in effect even when persistence fails.
func (m *Manager) Toggle() (Mode, error) {
	if m.mode == ModeDark {
		m.mode = ModeLight
	} else {
		m.mode = ModeDark
	}
	m.apply()

	m.cfg.Display.Theme = string(m.mode)
	return m.mode, model.SaveConfig(m.configPath, m.cfg)
}

// apply tells lipgloss which side of the adaptive color pairs to use,
// overriding terminal background detection.
func (m *Manager) apply() {
	lipgloss.SetHasDarkBackground(m.mode == ModeDark)
}
