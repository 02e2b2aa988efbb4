// ABOUTME: Root bubbletea model that hosts the reader screens
// ABOUTME: Routes back navigation from presenters into program exit

package app

import (
	"sync/atomic"

	"rss-reader-app/ui/search"

	tea "github.com/charmbracelet/bubbletea"
)

// Navigator records back navigation requested by presenters.
// Back may be called from any goroutine; the root model polls it after each update.
type Navigator struct {
	back atomic.Bool
}

// NewNavigator creates a Navigator
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Back requests leaving the current screen
func (n *Navigator) Back() {
	n.back.Store(true)
}

// consume reports and resets a pending back request
func (n *Navigator) consume() bool {
	return n.back.Swap(false)
}

// Model is the root model. The search screen is the only screen, so leaving it
// ends the program.
type Model struct {
	nav    *Navigator
	screen search.Model
	done   bool
}

// New creates the root model around the search screen
func New(nav *Navigator, screen search.Model) Model {
	return Model{nav: nav, screen: screen}
}

// Init starts the search screen
func (m Model) Init() tea.Cmd {
	return m.screen.Init()
}

// Update delegates to the screen and quits once back navigation was requested
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)

	if m.nav.consume() {
		m.done = true
		return m, tea.Quit
	}
	return m, cmd
}

// View renders the active screen
func (m Model) View() string {
	if m.done {
		return ""
	}
	return m.screen.View()
}

// Done reports whether the program is exiting
func (m Model) Done() bool {
	return m.done
}
