// Package ui provides the visual styling for the askpdf interactive
// interface, with light and dark variants of the blue/violet palette.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Light mode colors
	LightForeground = lipgloss.Color("#1f2937")
	LightPrimary    = lipgloss.Color("#2563eb") // Blue
	LightAccent     = lipgloss.Color("#7c3aed") // Violet
	LightMuted      = lipgloss.Color("#9ca3af")
	LightBorder     = lipgloss.Color("#d1d5db")

	// Dark mode colors
	DarkForeground = lipgloss.Color("#f3f4f6")
	DarkPrimary    = lipgloss.Color("#3b82f6") // Blue
	DarkAccent     = lipgloss.Color("#8b5cf6") // Violet
	DarkMuted      = lipgloss.Color("#6b7280")
	DarkBorder     = lipgloss.Color("#374151")

	// Semantic colors, same in both modes
	Success = lipgloss.Color("#10b981")
	Error   = lipgloss.Color("#ef4444")
	Info    = lipgloss.Color("#3b82f6")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeByName resolves a configured theme name; anything but "light" selects
// dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles holds the styled components used by the chat interface.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	Title lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	Prompt    lipgloss.Style
	UserInput lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Spinner lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Error: lipgloss.NewStyle().
			Foreground(Error),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}

// DefaultStyles returns the dark theme styles.
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}
