package search

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"rss-reader-app/core/domain"
	coresearch "rss-reader-app/core/search"
	"rss-reader-app/ui/components"
	"rss-reader-app/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePresenter records dispatched events and serves a fixed state
type fakePresenter struct {
	state   coresearch.State
	query   string
	events  []coresearch.Event
	updates chan coresearch.State
}

func newFakePresenter(posts ...domain.Post) *fakePresenter {
	updates := make(chan coresearch.State)
	close(updates)
	return &fakePresenter{
		state:   coresearch.State{SearchResults: posts},
		updates: updates,
	}
}

func (f *fakePresenter) State() coresearch.State          { return f.state }
func (f *fakePresenter) SearchQuery() string              { return f.query }
func (f *fakePresenter) Updates() <-chan coresearch.State { return f.updates }

func (f *fakePresenter) Dispatch(event coresearch.Event) {
	f.events = append(f.events, event)
	if e, ok := event.(coresearch.SearchQueryChanged); ok {
		f.query = e.Query
	}
}

func (f *fakePresenter) queries() []string {
	var out []string
	for _, e := range f.events {
		if q, ok := e.(coresearch.SearchQueryChanged); ok {
			out = append(out, q.Query)
		}
	}
	return out
}

func (f *fakePresenter) backs() int {
	n := 0
	for _, e := range f.events {
		if _, ok := e.(coresearch.BackClicked); ok {
			n++
		}
	}
	return n
}

func makePosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			ID:        fmt.Sprintf("p%d", i),
			Title:     fmt.Sprintf("Post %d", i),
			FeedTitle: "Example",
			Link:      fmt.Sprintf("https://example.com/posts/%d", i),
		}
	}
	return posts
}

func newTestModel(p Presenter, openLink func(string), opts ...Option) Model {
	opts = append([]Option{
		WithStyles(theme.NewStyles(theme.LightTheme())),
		WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	}, opts...)
	m := New(p, openLink, opts...)
	m, _ = m.Update(FocusRequestMsg{})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSearchScreen_InitRequestsFocus(t *testing.T) {
	m := New(newFakePresenter(), nil)
	assert.Equal(t, focusNone, m.focus)

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)

	var focusRequested bool
	for _, cmd := range batch {
		if cmd == nil {
			continue
		}
		if _, ok := cmd().(FocusRequestMsg); ok {
			focusRequested = true
		}
	}
	require.True(t, focusRequested)

	m, _ = m.Update(FocusRequestMsg{})
	assert.Equal(t, focusInput, m.focus)
	assert.True(t, m.input.Focused())
}

func TestSearchScreen_TypingDispatchesEachChange(t *testing.T) {
	p := newFakePresenter()
	m := newTestModel(p, nil)

	m, _ = m.Update(key("a"))
	m, _ = m.Update(key("b"))
	m, _ = m.Update(key("c"))

	assert.Equal(t, []string{"a", "ab", "abc"}, p.queries())
	assert.Equal(t, "abc", m.input.Value())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, []string{"a", "ab", "abc", "ab"}, p.queries())
}

func TestSearchScreen_KeysThatDoNotEditDispatchNothing(t *testing.T) {
	p := newFakePresenter()
	m := newTestModel(p, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Empty(t, p.events)
}

func TestSearchScreen_ClearDispatchesEmptyQuery(t *testing.T) {
	p := newFakePresenter()
	m := newTestModel(p, nil)

	m, _ = m.Update(key("g"))
	m, _ = m.Update(key("o"))
	require.True(t, m.ClearVisible())

	m.clearFocus()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, []string{"g", "go", ""}, p.queries())
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, focusInput, m.focus, "clear re-focuses the query field")
	assert.False(t, m.ClearVisible())
}

func TestSearchScreen_ClearHiddenForBlankQuery(t *testing.T) {
	p := newFakePresenter()
	p.query = "   "
	m := newTestModel(p, nil)

	assert.False(t, m.ClearVisible())
	assert.NotContains(t, m.View(), "ctrl+l")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, p.events)

	p.query = "go"
	assert.Contains(t, m.View(), "ctrl+l")
}

func TestSearchScreen_BackDispatchesOnce(t *testing.T) {
	p := newFakePresenter(makePosts(3)...)
	m := newTestModel(p, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, 1, p.backs())
	assert.Len(t, p.events, 1)
}

func TestSearchScreen_EnterOpensSelectedPostOnce(t *testing.T) {
	var opened []string
	p := newFakePresenter(makePosts(3)...)
	m := newTestModel(p, func(url string) { opened = append(opened, url) })

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusList, m.focus)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, opened, "opening runs as a command")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	assert.Equal(t, []string{"https://example.com/posts/1"}, opened)
	assert.Empty(t, p.events)
}

func TestSearchScreen_SlowBrowserDoesNotBlockUpdate(t *testing.T) {
	release := make(chan struct{})
	opened := make(chan string, 1)
	m := newTestModel(newFakePresenter(makePosts(2)...), func(url string) {
		<-release
		opened <- url
	})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	returned := make(chan tea.Cmd, 1)
	go func() {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		returned <- cmd
	}()

	var cmd tea.Cmd
	select {
	case cmd = <-returned:
	case <-time.After(time.Second):
		t.Fatal("Update blocked on the browser")
	}
	require.NotNil(t, cmd)

	go cmd()
	close(release)
	assert.Equal(t, "https://example.com/posts/0", <-opened)
}

func TestSearchScreen_FocusNavigation(t *testing.T) {
	p := newFakePresenter(makePosts(3)...)
	m := newTestModel(p, nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, focusList, m.focus)
	assert.False(t, m.input.Focused())

	// up on the first row returns to the query field
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, focusInput, m.focus)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(key("/"))
	assert.Equal(t, focusInput, m.focus)
	assert.Empty(t, p.events, "slash in the list does not type into the query")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusInput, m.focus)
}

func TestSearchScreen_ListFocusNeedsResults(t *testing.T) {
	m := newTestModel(newFakePresenter(), nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, focusInput, m.focus)
}

func TestSearchScreen_KeyboardClosedClearsFocus(t *testing.T) {
	p := newFakePresenter()
	m := newTestModel(p, nil)
	require.True(t, m.input.Focused())

	m, _ = m.Update(tea.BlurMsg{})

	assert.Equal(t, focusNone, m.focus)
	assert.False(t, m.input.Focused())

	// Regaining focus does not steal it back
	m, _ = m.Update(tea.FocusMsg{})
	assert.Equal(t, focusNone, m.focus)

	// Typing without focus does nothing
	m, _ = m.Update(key("x"))
	assert.Empty(t, p.events)
}

func TestLayoutRows_Dividers(t *testing.T) {
	tests := []struct {
		total    int
		dividers int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{7, 6},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d posts", tt.total), func(t *testing.T) {
			rows := layoutRows(tt.total, 0, tt.total)

			dividers, posts := 0, 0
			for _, r := range rows {
				if r.divider {
					dividers++
				} else {
					posts++
				}
			}
			assert.Equal(t, tt.dividers, dividers)
			assert.Equal(t, tt.total, posts)
			if len(rows) > 0 {
				assert.False(t, rows[len(rows)-1].divider, "no divider after the last post")
			}
		})
	}
}

func TestLayoutRows_WindowKeepsDividerBeforeHiddenPosts(t *testing.T) {
	rows := layoutRows(5, 1, 2)

	assert.Equal(t, []listRow{{post: 1}, {post: 1, divider: true}, {post: 2}, {post: 2, divider: true}}, rows)
}

func countListDividers(view string) int {
	n := 0
	for _, line := range strings.Split(view, "\n") {
		if strings.HasPrefix(line, "  ─") {
			n++
		}
	}
	return n
}

func TestSearchScreen_ViewRendersDividersBetweenPosts(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		p := newFakePresenter(makePosts(n)...)
		m := newTestModel(p, nil)
		m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})

		view := m.View()

		assert.Equal(t, max(n-1, 0), countListDividers(view), "%d posts", n)
		for i := 0; i < n; i++ {
			assert.Contains(t, view, fmt.Sprintf("Post %d", i))
		}
	}
}

func TestSearchScreen_EmptyStateCopy(t *testing.T) {
	p := newFakePresenter()
	m := newTestModel(p, nil)

	assert.Contains(t, m.View(), "Type to search your feeds")

	p.query = "zig"
	assert.Contains(t, m.View(), "No posts match your search")
}

func TestSearchScreen_RejectedQueryShowsReason(t *testing.T) {
	p := newFakePresenter(makePosts(3)...)
	m := newTestModel(p, nil)
	p.query = strings.Repeat("a", 101)

	m, _ = m.Update(stateMsg{state: coresearch.State{Rejected: "search query cannot exceed 100 characters"}})

	assert.Empty(t, m.results)
	assert.Contains(t, m.View(), "Cannot search: search query cannot exceed 100 characters")
	assert.NotContains(t, m.View(), "No posts match your search")

	m, _ = m.Update(stateMsg{state: coresearch.State{SearchResults: makePosts(1)}})
	assert.NotContains(t, m.View(), "Cannot search")
}

// smallModel shows two posts at a time: 11 lines leave 8 for the list
func smallModel(t *testing.T, n int, opts ...Option) Model {
	t.Helper()
	m := newTestModel(newFakePresenter(makePosts(n)...), nil, opts...)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 11})
	require.Equal(t, 2, m.visibleRows())
	return m
}

func TestSearchScreen_ScrollToTopVisibility(t *testing.T) {
	m := smallModel(t, 6)
	assert.False(t, m.ShowScrollToTop())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(key("j"))
	assert.Equal(t, 0, m.firstVisible)
	assert.False(t, m.ShowScrollToTop())

	m, _ = m.Update(key("j"))
	assert.Equal(t, 1, m.firstVisible)
	assert.True(t, m.ShowScrollToTop())
	assert.Contains(t, m.View(), components.ScrollToTopLabel)
}

func TestSearchScreen_ScrollToTopNeverVisibleWithoutPosts(t *testing.T) {
	m := newTestModel(newFakePresenter(), nil)

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})

	assert.False(t, m.ShowScrollToTop())
	assert.NotContains(t, m.View(), components.ScrollToTopLabel)
}

func TestSearchScreen_ScrollToTopInstant(t *testing.T) {
	m := smallModel(t, 10, WithAnimatedScroll(false))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	require.True(t, m.ShowScrollToTop())

	m, cmd := m.Update(key("t"))

	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.firstVisible)
	assert.Equal(t, 0, m.selected)
	assert.False(t, m.ShowScrollToTop())
}

func TestSearchScreen_ScrollToTopAnimates(t *testing.T) {
	m := smallModel(t, 20)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	}
	start := m.firstVisible
	require.Greater(t, start, 1)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyHome})
	require.NotNil(t, cmd)
	assert.True(t, m.scrolling)

	ticks := 0
	previous := start
	for cmd != nil && ticks < 300 {
		msg := cmd()
		m, cmd = m.Update(msg)
		assert.LessOrEqual(t, m.firstVisible, previous, "scroll only moves up")
		previous = m.firstVisible
		ticks++
	}

	assert.Nil(t, cmd, "animation settles")
	assert.Greater(t, ticks, 1)
	assert.Equal(t, 0, m.firstVisible)
	assert.False(t, m.ShowScrollToTop())
}

func TestSearchScreen_NewScrollSupersedesRunningAnimation(t *testing.T) {
	m := smallModel(t, 20)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	}

	m, _ = m.Update(key("g"))
	stale := scrollTickMsg{generation: m.scrollGen}
	m, _ = m.Update(key("g"))
	require.NotEqual(t, stale.generation, m.scrollGen)

	before := m.firstVisible
	m, cmd := m.Update(stale)

	assert.Nil(t, cmd, "stale ticks are dropped")
	assert.Equal(t, before, m.firstVisible)
	assert.True(t, m.scrolling)
}

func TestSearchScreen_ManualScrollCancelsAnimation(t *testing.T) {
	m := smallModel(t, 20)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	}

	m, _ = m.Update(key("t"))
	tick := scrollTickMsg{generation: m.scrollGen}
	m, _ = m.Update(key("j"))

	assert.False(t, m.scrolling)
	_, cmd := m.Update(tick)
	assert.Nil(t, cmd)
}

func TestSearchScreen_MouseWheelScrolls(t *testing.T) {
	m := smallModel(t, 6)

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, 2, m.firstVisible)
	assert.Equal(t, 2, m.selected, "selection follows the viewport")

	for i := 0; i < 10; i++ {
		m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	}
	assert.Equal(t, 4, m.firstVisible, "clamped to the last full page")

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, 3, m.firstVisible)
}

func TestSearchScreen_ScrollToTopFromInputFocus(t *testing.T) {
	m := smallModel(t, 6, WithAnimatedScroll(false))
	p := m.presenter.(*fakePresenter)
	require.Equal(t, focusInput, m.focus)

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	require.True(t, m.ShowScrollToTop())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	assert.Equal(t, 0, m.firstVisible)
	assert.False(t, m.ShowScrollToTop())
	assert.Equal(t, focusInput, m.focus)
	assert.Empty(t, p.events, "activating the button does not edit the query")
}

func TestSearchScreen_ClickScrollToTop(t *testing.T) {
	m := smallModel(t, 6, WithAnimatedScroll(false))
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	require.True(t, m.ShowScrollToTop())

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 11)
	require.Contains(t, lines[m.footerRow()], components.ScrollToTopLabel)

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress, X: 50, Y: 3})
	assert.True(t, m.ShowScrollToTop(), "clicks on the list leave the scroll alone")

	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress, X: 50, Y: m.footerRow()})
	assert.Equal(t, 0, m.firstVisible)
	assert.False(t, m.ShowScrollToTop())
}

func TestSearchScreen_NewResultsResetScroll(t *testing.T) {
	m := smallModel(t, 6)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	require.True(t, m.ShowScrollToTop())

	m, _ = m.Update(stateMsg{state: coresearch.State{SearchResults: makePosts(3)}})

	assert.Equal(t, 0, m.firstVisible)
	assert.Equal(t, 0, m.selected)
	assert.Len(t, m.results, 3)
}

func TestSearchScreen_EmptyResultsReturnFocusToInput(t *testing.T) {
	m := newTestModel(newFakePresenter(makePosts(2)...), nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusList, m.focus)

	m, _ = m.Update(stateMsg{state: coresearch.State{}})

	assert.Equal(t, focusInput, m.focus)
}

func TestSearchScreen_StateMsgKeepsListening(t *testing.T) {
	p := newFakePresenter()
	updates := make(chan coresearch.State, 1)
	p.updates = updates
	m := newTestModel(p, nil)

	updates <- coresearch.State{SearchResults: makePosts(1)}
	msg := m.waitForState()()
	m, cmd := m.Update(msg)

	assert.Len(t, m.results, 1)
	require.NotNil(t, cmd)

	close(updates)
	assert.Nil(t, m.waitForState()())
}
