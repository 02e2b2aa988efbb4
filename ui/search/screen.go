// Package search implements the post search screen: a query field, the live
// result list and a scroll-to-top button.
//
// The screen never filters posts itself. Every edit of the query field is sent to
// the presenter as a SearchQueryChanged event and the list shows whatever state
// the presenter publishes next.
package search

import (
	"math"
	"strings"
	"time"

	"rss-reader-app/core/domain"
	coresearch "rss-reader-app/core/search"
	"rss-reader-app/ui/components"
	"rss-reader-app/ui/keyboard"
	"rss-reader-app/ui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	// search bar line plus the divider under it
	headerHeight = 2
	// scroll-to-top line
	footerHeight = 1

	// list dividers are inset by this many cells on both sides
	dividerMargin = 2

	scrollFPS = 60
	// spring tuning: angular frequency and damping ratio (1 is critically damped)
	scrollFrequency = 8.0
	scrollDamping   = 1.0
)

// Presenter is the screen's view of the search presenter
type Presenter interface {
	State() coresearch.State
	SearchQuery() string
	Dispatch(event coresearch.Event)
	Updates() <-chan coresearch.State
}

type focusArea int

const (
	focusNone focusArea = iota
	focusInput
	focusList
)

// FocusRequestMsg asks the screen to focus the query field
type FocusRequestMsg struct{}

type stateMsg struct {
	state coresearch.State
}

type scrollTickMsg struct {
	generation int
}

// Model is the search screen
type Model struct {
	presenter Presenter
	openLink  func(url string)
	styles    theme.Styles
	now       func() time.Time
	animated  bool

	input textinput.Model
	focus focusArea

	results      []domain.Post
	rejected     string
	selected     int
	firstVisible int

	width  int
	height int

	spring    harmonica.Spring
	scrollPos float64
	scrollVel float64
	scrollGen int
	scrolling bool
}

// Option configures a Model
type Option func(*Model)

// WithStyles sets the styles the screen renders with
func WithStyles(styles theme.Styles) Option {
	return func(m *Model) {
		m.styles = styles
	}
}

// WithAnimatedScroll turns the scroll-to-top animation on or off
func WithAnimatedScroll(enabled bool) Option {
	return func(m *Model) {
		m.animated = enabled
	}
}

// WithClock sets the clock used for post ages
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// New creates the search screen. openLink is called with a post's link when the post is activated.
func New(presenter Presenter, openLink func(url string), opts ...Option) Model {
	m := Model{
		presenter: presenter,
		openLink:  openLink,
		styles:    theme.DefaultStyles(),
		now:       time.Now,
		animated:  true,
		width:     80,
		height:    24,
		spring:    harmonica.NewSpring(harmonica.FPS(scrollFPS), scrollFrequency, scrollDamping),
	}
	for _, opt := range opts {
		opt(&m)
	}

	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "Search posts"
	input.PlaceholderStyle = m.styles.Placeholder
	input.TextStyle = m.styles.InputText
	input.Cursor.Style = m.styles.Cursor
	input.SetValue(presenter.SearchQuery())
	m.input = input
	m.resizeInput()

	m.results = presenter.State().SearchResults
	m.rejected = presenter.State().Rejected

	return m
}

// Init requests focus for the query field and starts listening for presenter state
func (m Model) Init() tea.Cmd {
	return tea.Batch(requestFocus, textinput.Blink, m.waitForState())
}

func requestFocus() tea.Msg {
	return FocusRequestMsg{}
}

// waitForState delivers the next published state. It stops once Updates is closed.
func (m Model) waitForState() tea.Cmd {
	updates := m.presenter.Updates()
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg{state: state}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kb, ok := keyboard.FromTeaMsg(msg); ok {
		msg = kb
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInput()
		m.firstVisible = clamp(m.firstVisible, 0, m.maxFirstVisible())
		m.ensureVisible()
		return m, nil

	case FocusRequestMsg:
		return m, m.focusInput()

	case keyboard.StateMsg:
		if msg.State == keyboard.Closed {
			m.clearFocus()
		}
		return m, nil

	case stateMsg:
		m.rejected = msg.state.Rejected
		cmd := m.setResults(msg.state.SearchResults)
		return m, tea.Batch(cmd, m.waitForState())

	case scrollTickMsg:
		return m.stepScroll(msg)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			m.scrollBy(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == m.footerRow() && m.ShowScrollToTop() {
				return m, m.scrollToTop()
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other input internals
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.presenter.Dispatch(coresearch.BackClicked{})
		return m, nil
	case "ctrl+l":
		if !m.ClearVisible() {
			return m, nil
		}
		m.input.SetValue("")
		m.presenter.Dispatch(coresearch.SearchQueryChanged{Query: ""})
		return m, m.focusInput()
	case "ctrl+t":
		return m, m.scrollToTop()
	}

	switch m.focus {
	case focusInput:
		return m.handleInputKey(msg)
	case focusList:
		return m.handleListKey(msg)
	}

	switch msg.String() {
	case "/":
		return m, m.focusInput()
	case "tab", "down":
		m.focusList()
	case "home":
		return m, m.scrollToTop()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "down", "tab", "enter":
		m.focusList()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.presenter.Dispatch(coresearch.SearchQueryChanged{Query: after})
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.selected == 0 {
			return m, m.focusInput()
		}
		m.moveSelection(-1)
	case "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)
	case "pgup":
		m.moveSelection(-m.visibleRows())
	case "pgdown":
		m.moveSelection(m.visibleRows())
	case "enter":
		if post, ok := m.SelectedPost(); ok && m.openLink != nil {
			return m, openPost(m.openLink, post.Link)
		}
	case "t", "home", "g":
		return m, m.scrollToTop()
	case "/", "shift+tab":
		return m, m.focusInput()
	}
	return m, nil
}

// openPost opens link off the update goroutine; browser helpers may block until they exit
func openPost(openLink func(string), link string) tea.Cmd {
	return func() tea.Msg {
		openLink(link)
		return nil
	}
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

// focusList moves focus to the result list; it is a no-op without results
func (m *Model) focusList() {
	if len(m.results) == 0 {
		return
	}
	m.focus = focusList
	m.input.Blur()
	if m.selected < m.firstVisible || m.selected >= m.firstVisible+m.visibleRows() {
		m.selected = m.firstVisible
	}
}

func (m *Model) clearFocus() {
	m.focus = focusNone
	m.input.Blur()
}

func (m *Model) setResults(posts []domain.Post) tea.Cmd {
	m.results = posts
	m.selected = 0
	m.firstVisible = 0
	m.stopScroll()

	if m.focus == focusList && len(posts) == 0 {
		return m.focusInput()
	}
	return nil
}

func (m *Model) moveSelection(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.stopScroll()
	m.selected = clamp(m.selected+delta, 0, len(m.results)-1)
	m.ensureVisible()
}

// scrollBy moves the viewport and drags the selection along when it leaves the window
func (m *Model) scrollBy(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.stopScroll()
	m.firstVisible = clamp(m.firstVisible+delta, 0, m.maxFirstVisible())

	last := m.firstVisible + m.visibleRows() - 1
	if m.selected < m.firstVisible {
		m.selected = m.firstVisible
	} else if m.selected > last {
		m.selected = last
	}
}

func (m *Model) ensureVisible() {
	if len(m.results) == 0 {
		m.selected, m.firstVisible = 0, 0
		return
	}
	m.selected = clamp(m.selected, 0, len(m.results)-1)

	rows := m.visibleRows()
	if m.selected < m.firstVisible {
		m.firstVisible = m.selected
	} else if m.selected >= m.firstVisible+rows {
		m.firstVisible = m.selected - rows + 1
	}
	m.firstVisible = clamp(m.firstVisible, 0, m.maxFirstVisible())
}

// scrollToTop selects the first post and scrolls the list back to it.
// A new call supersedes an animation that is still running.
func (m *Model) scrollToTop() tea.Cmd {
	if len(m.results) == 0 {
		return nil
	}
	m.selected = 0
	m.scrollGen++

	if !m.animated || m.firstVisible == 0 {
		m.scrolling = false
		m.firstVisible = 0
		m.scrollPos, m.scrollVel = 0, 0
		return nil
	}

	if !m.scrolling {
		m.scrollPos = float64(m.firstVisible)
		m.scrollVel = 0
	}
	m.scrolling = true
	return scrollTick(m.scrollGen)
}

func scrollTick(generation int) tea.Cmd {
	return tea.Tick(time.Second/scrollFPS, func(time.Time) tea.Msg {
		return scrollTickMsg{generation: generation}
	})
}

func (m Model) stepScroll(msg scrollTickMsg) (Model, tea.Cmd) {
	if !m.scrolling || msg.generation != m.scrollGen {
		return m, nil
	}

	m.scrollPos, m.scrollVel = m.spring.Update(m.scrollPos, m.scrollVel, 0)
	if math.Abs(m.scrollPos) < 0.5 && math.Abs(m.scrollVel) < 0.5 {
		m.scrollPos, m.scrollVel = 0, 0
		m.firstVisible = 0
		m.scrolling = false
		return m, nil
	}

	m.firstVisible = clamp(int(math.Round(m.scrollPos)), 0, m.maxFirstVisible())
	return m, scrollTick(m.scrollGen)
}

// stopScroll cancels a running animation; its pending ticks become stale
func (m *Model) stopScroll() {
	if m.scrolling {
		m.scrollGen++
		m.scrolling = false
	}
}

func (m *Model) resizeInput() {
	// back icon, clear hint and padding
	m.input.Width = max(m.width-16, 8)
}

func (m Model) listHeight() int {
	return max(m.height-headerHeight-footerHeight, 1)
}

// footerRow is the screen line holding the scroll-to-top button
func (m Model) footerRow() int {
	return headerHeight + m.listHeight()
}

// visibleRows is how many posts fit, counting one divider between neighbours
func (m Model) visibleRows() int {
	return max((m.listHeight()+1)/(components.PostItemHeight+1), 1)
}

func (m Model) maxFirstVisible() int {
	return max(len(m.results)-m.visibleRows(), 0)
}

// ShowScrollToTop reports whether the scroll-to-top button is shown
func (m Model) ShowScrollToTop() bool {
	return m.firstVisible > 0
}

// ClearVisible reports whether the clear action is offered
func (m Model) ClearVisible() bool {
	return strings.TrimSpace(m.presenter.SearchQuery()) != ""
}

// SelectedPost returns the highlighted post
func (m Model) SelectedPost() (domain.Post, bool) {
	if m.selected < 0 || m.selected >= len(m.results) {
		return domain.Post{}, false
	}
	return m.results[m.selected], true
}

// listRow is one line group in the result list: a post or the divider after it
type listRow struct {
	post    int
	divider bool
}

// layoutRows lays out count posts starting at first, with a divider after every
// post except the last one of all total posts
func layoutRows(total, first, count int) []listRow {
	end := min(first+count, total)
	rows := make([]listRow, 0, 2*max(end-first, 0))
	for i := first; i < end; i++ {
		rows = append(rows, listRow{post: i})
		if i != total-1 {
			rows = append(rows, listRow{post: i, divider: true})
		}
	}
	return rows
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderSearchBar())
	b.WriteString("\n")
	b.WriteString(m.styles.RenderDivider(m.width, 0))
	b.WriteString("\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(components.RenderScrollToTop(m.ShowScrollToTop(), m.width, m.styles))
	return b.String()
}

func (m Model) renderSearchBar() string {
	left := m.styles.Icon.Render("← ") + m.input.View()
	if !m.ClearVisible() {
		return m.styles.SearchBar.Render(left)
	}

	clearHint := m.styles.Icon.Render("✕") + m.styles.Help.Render(" ctrl+l")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(clearHint)-2, 1)
	return m.styles.SearchBar.Render(left + strings.Repeat(" ", gap) + clearHint)
}

func (m Model) renderList() string {
	height := m.listHeight()
	box := lipgloss.NewStyle().Height(height).MaxHeight(height)

	if len(m.results) == 0 {
		msg := "Type to search your feeds"
		switch {
		case m.rejected != "":
			msg = "Cannot search: " + m.rejected
		case strings.TrimSpace(m.presenter.SearchQuery()) != "":
			msg = "No posts match your search"
		}
		return box.Render(m.styles.Empty.Render(msg))
	}

	now := m.now()
	lines := make([]string, 0)
	for _, row := range layoutRows(len(m.results), m.firstVisible, m.visibleRows()) {
		if row.divider {
			lines = append(lines, m.styles.RenderDivider(m.width, dividerMargin))
			continue
		}
		selected := m.focus == focusList && row.post == m.selected
		lines = append(lines, components.RenderPostItem(m.results[row.post], m.width, selected, m.styles, now))
	}

	return box.Render(strings.Join(lines, "\n"))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
