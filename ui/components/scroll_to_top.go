package components

import (
	"strings"

	"rss-reader-app/ui/theme"

	"github.com/charmbracelet/lipgloss"
)

// ScrollToTopLabel is the text of the scroll-to-top button
const ScrollToTopLabel = "↑ Top (ctrl+t)"

// RenderScrollToTop draws the button right-aligned in a line of width cells.
// A hidden button still takes its line so the list does not jump.
func RenderScrollToTop(visible bool, width int, styles theme.Styles) string {
	if !visible {
		return strings.Repeat(" ", max(width, 0))
	}

	button := styles.ScrollToTop.Render(ScrollToTopLabel)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, button+"  ")
}
