// Package theme holds the reader's lipgloss palette and component styles.
package theme

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the current color scheme
type Theme struct {
	Surface          lipgloss.Color
	SurfaceContainer lipgloss.Color
	OnSurface        lipgloss.Color
	EmphasisHigh     lipgloss.Color
	EmphasisMed      lipgloss.Color
	Accent           lipgloss.Color
	IsDark           bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Surface:          lipgloss.Color("#fbfcfe"),
		SurfaceContainer: lipgloss.Color("#e3e6ea"),
		OnSurface:        lipgloss.Color("#1a1c1e"),
		EmphasisHigh:     lipgloss.Color("#1a1c1e"),
		EmphasisMed:      lipgloss.Color("#5d6066"),
		Accent:           lipgloss.Color("#2c6bd6"),
		IsDark:           false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Surface:          lipgloss.Color("#111318"),
		SurfaceContainer: lipgloss.Color("#2a2d33"),
		OnSurface:        lipgloss.Color("#e2e2e6"),
		EmphasisHigh:     lipgloss.Color("#f2f2f5"),
		EmphasisMed:      lipgloss.Color("#a4a8b0"),
		Accent:           lipgloss.Color("#a9c7ff"),
		IsDark:           true,
	}
}

// DetectTheme picks dark mode when COLORFGBG reports a dark background
// or READER_THEME=dark is set
func DetectTheme() Theme {
	switch strings.ToLower(os.Getenv("READER_THEME")) {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	}

	// Format is usually "foreground;background"
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}

	return LightTheme()
}

// Styles contains every style the screens render with
type Styles struct {
	Theme Theme

	// Search bar
	SearchBar   lipgloss.Style
	Icon        lipgloss.Style
	Placeholder lipgloss.Style
	InputText   lipgloss.Style
	Cursor      lipgloss.Style

	// Post list
	Title         lipgloss.Style
	SelectedTitle lipgloss.Style
	Description   lipgloss.Style
	Meta          lipgloss.Style
	Marker        lipgloss.Style
	Divider       lipgloss.Style
	Empty         lipgloss.Style

	// Scroll to top button
	ScrollToTop lipgloss.Style

	Help lipgloss.Style
}

// NewStyles creates styles for the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		SearchBar: lipgloss.NewStyle().
			Padding(0, 1),

		Icon: lipgloss.NewStyle().
			Foreground(theme.OnSurface).
			Bold(true),

		Placeholder: lipgloss.NewStyle().
			Foreground(theme.EmphasisMed),

		InputText: lipgloss.NewStyle().
			Foreground(theme.EmphasisHigh),

		Cursor: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Title: lipgloss.NewStyle().
			Foreground(theme.EmphasisHigh).
			Bold(true),

		SelectedTitle: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Description: lipgloss.NewStyle().
			Foreground(theme.OnSurface),

		Meta: lipgloss.NewStyle().
			Foreground(theme.EmphasisMed),

		Marker: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.SurfaceContainer),

		Empty: lipgloss.NewStyle().
			Foreground(theme.EmphasisMed).
			Italic(true).
			Padding(1, 2),

		ScrollToTop: lipgloss.NewStyle().
			Foreground(theme.Surface).
			Background(theme.Accent).
			Padding(0, 1).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(theme.EmphasisMed),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider inset by margin cells on both sides
func (s Styles) RenderDivider(width, margin int) string {
	n := width - 2*margin
	if n < 1 {
		n = 1
	}
	return strings.Repeat(" ", margin) + s.Divider.Render(strings.Repeat("─", n))
}
