// Package theme persists the light/dark preference and exposes the
// lipgloss palette the TUI renders with.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/naviya/naviya/internal/store"
)

// Mode is the colour scheme flag.
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// Load returns the stored mode, falling back to terminal background
// detection when nothing is saved.
func Load(s *store.Store) Mode {
	raw, ok, err := s.Get(store.KeyTheme)
	if err == nil && ok {
		if m := Mode(raw); m == Dark || m == Light {
			return m
		}
	}
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// Save persists the mode.
func Save(s *store.Store, m Mode) error {
	return s.Set(store.KeyTheme, string(m))
}

// Toggle flips and persists the mode, returning the new value.
func Toggle(s *store.Store) (Mode, error) {
	m := Light
	if Load(s) == Light {
		m = Dark
	}
	return m, Save(s, m)
}

// Palette is the resolved style set for one mode.
type Palette struct {
	Accent   lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Danger   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Surface  lipgloss.Color
	Unlocked lipgloss.Style
	Locked   lipgloss.Style
	Title    lipgloss.Style
	Dim      lipgloss.Style
	Panel    lipgloss.Style
	Toast    lipgloss.Style
}

// PaletteFor builds the palette for a mode.
func PaletteFor(m Mode) Palette {
	p := Palette{
		Accent:  lipgloss.Color("45"),
		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("214"),
		Danger:  lipgloss.Color("203"),
	}
	if m == Dark {
		p.Text = lipgloss.Color("252")
		p.Muted = lipgloss.Color("241")
		p.Surface = lipgloss.Color("236")
	} else {
		p.Text = lipgloss.Color("235")
		p.Muted = lipgloss.Color("246")
		p.Surface = lipgloss.Color("254")
	}

	p.Title = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	p.Dim = lipgloss.NewStyle().Foreground(p.Muted)
	p.Unlocked = lipgloss.NewStyle().Foreground(p.Success)
	p.Locked = lipgloss.NewStyle().Foreground(p.Muted).Faint(true)
	p.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Muted).
		Padding(0, 1)
	p.Toast = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Accent).
		Padding(0, 1)
	return p
}
