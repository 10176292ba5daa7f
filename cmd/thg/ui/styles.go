// Package ui is the terminal front end of the engagement-letter wizard.
// Colors follow the THG brand: gold on black, with a light variant.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Dark (default)
	DarkBackground = lipgloss.Color("#000000")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#d1b156") // THG gold
	DarkAccent     = lipgloss.Color("#facc15") // yellow-400
	DarkMuted      = lipgloss.Color("#9ca3af")
	DarkBorder     = lipgloss.Color("#a16207")
	DarkTrack      = lipgloss.Color("#404040")

	// Light
	LightBackground = lipgloss.Color("#fafaf5")
	LightForeground = lipgloss.Color("#1c1917")
	LightPrimary    = lipgloss.Color("#8a6d1d")
	LightAccent     = lipgloss.Color("#b8860b")
	LightMuted      = lipgloss.Color("#6b7280")
	LightBorder     = lipgloss.Color("#d1b156")
	LightTrack      = lipgloss.Color("#e5e5e5")

	// Semantic
	Destructive = lipgloss.Color("#fca5a5") // red-200
	Success     = lipgloss.Color("#bbf7d0") // green-200
	Info        = lipgloss.Color("#fef08a") // yellow-200
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Track      lipgloss.Color
	IsDark     bool
}

// DarkTheme is gold on black.
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Track:      DarkTrack,
		IsDark:     true,
	}
}

// LightTheme is for light terminals.
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Track:      LightTrack,
		IsDark:     false,
	}
}

// DetectTheme picks the light theme when THG_LIGHT_MODE=1 or COLORFGBG
// reports a light background; dark otherwise.
func DetectTheme() Theme {
	if os.Getenv("THG_LIGHT_MODE") == "1" {
		return LightTheme()
	}
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		bg, err := strconv.Atoi(parts[1])
		if err == nil && (bg == 7 || (bg >= 9 && bg <= 15)) {
			return LightTheme()
		}
	}
	return DarkTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Panel  lipgloss.Style
	Footer lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style

	// Interactive
	Prompt       lipgloss.Style
	FocusedLabel lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	ButtonOff    lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Banner  lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(26),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		FocusedLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Width(26),

		Button: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 2),

		ButtonActive: lipgloss.NewStyle().
			Foreground(theme.Background).
			Background(theme.Primary).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 2).
			Bold(true),

		ButtonOff: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Track).
			Padding(0, 2),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Error: lipgloss.NewStyle().
			Foreground(Destructive),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo returns the THG wordmark.
func Logo(s Styles) string {
	logo := `
 _____ _   _  ____
|_   _| | | |/ ___|
  | | | |_| | |  _
  | | |  _  | |_| |
  |_| |_| |_|\____|
`
	return s.Title.Render(logo)
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	return s.Muted.Render(strings.Repeat("─", width))
}
