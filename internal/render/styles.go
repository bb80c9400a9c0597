package render

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette of the planner: vault blue and pip-boy gold.
var (
	VaultBlue = lipgloss.Color("#003366")
	VaultGold = lipgloss.Color("#FFD700")

	LightForeground = lipgloss.Color("#101F38")
	LightMuted      = lipgloss.Color("#8a94a6")
	DarkForeground  = lipgloss.Color("#f2f2f2")
	DarkMuted       = lipgloss.Color("#5c6b84")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    VaultBlue,
		Accent:     VaultBlue,
		Muted:      LightMuted,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    VaultGold,
		Accent:     VaultGold,
		Muted:      DarkMuted,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG or PERKPLAN_DARK_MODE=1,
// light mode otherwise.
func DetectTheme() Theme {
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		// Format is usually "foreground;background"
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}
	if os.Getenv("PERKPLAN_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components used by the table renderer.
type Styles struct {
	Theme Theme

	Title  lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
}

// NewStyles builds styles for theme on the given lipgloss renderer, so color
// output follows the destination writer rather than stdout.
func NewStyles(r *lipgloss.Renderer, theme Theme) Styles {
	return Styles{
		Theme: theme,
		Title: r.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Header: r.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),
		Body: r.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),
		Muted: r.NewStyle().
			Foreground(theme.Muted),
		Accent: r.NewStyle().
			Foreground(theme.Accent).
			Bold(true),
	}
}
