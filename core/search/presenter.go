// ABOUTME: Search presenter owns the search screen state and reacts to screen events
// ABOUTME: Searches run off the UI goroutine; each new query supersedes the previous one

package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"rss-reader-app/core/domain"
	coreerrors "rss-reader-app/core/errors"
	"rss-reader-app/core/interfaces"
)

// DefaultDebounce is how long the presenter waits after the last keystroke before searching
const DefaultDebounce = 300 * time.Millisecond

// Event is something the search screen asks the presenter to do
type Event interface {
	isSearchEvent()
}

// SearchQueryChanged carries the full text of the query field after an edit
type SearchQueryChanged struct {
	Query string
}

// BackClicked asks to leave the search screen
type BackClicked struct{}

func (SearchQueryChanged) isSearchEvent() {}
func (BackClicked) isSearchEvent()        {}

// State is what the search screen renders
type State struct {
	// SearchResults holds matching posts in display order
	SearchResults []domain.Post
	// Rejected explains why the current query was not searched; empty otherwise
	Rejected string
}

// Searcher looks up posts for a query
type Searcher interface {
	SearchPosts(ctx context.Context, query string) ([]domain.Post, error)
}

// Presenter holds the search state and the current query
type Presenter struct {
	searcher Searcher
	logger   interfaces.Logger
	debounce time.Duration
	onBack   func()

	mu         sync.Mutex
	state      State
	query      string
	cancel     context.CancelFunc
	generation uint64
	closed     bool
	updates    chan State
	wg         sync.WaitGroup
}

// PresenterOption configures a Presenter
type PresenterOption func(*Presenter)

// WithDebounce sets the delay between the last query change and the search.
// Zero searches immediately.
func WithDebounce(d time.Duration) PresenterOption {
	return func(p *Presenter) {
		if d >= 0 {
			p.debounce = d
		}
	}
}

// WithOnBack sets the callback invoked for BackClicked
func WithOnBack(fn func()) PresenterOption {
	return func(p *Presenter) {
		p.onBack = fn
	}
}

// WithLogger sets the logger used for search failures
func WithLogger(logger interfaces.Logger) PresenterOption {
	return func(p *Presenter) {
		p.logger = logger
	}
}

// NewPresenter creates a presenter backed by searcher
func NewPresenter(searcher Searcher, opts ...PresenterOption) *Presenter {
	p := &Presenter{
		searcher: searcher,
		debounce: DefaultDebounce,
		updates:  make(chan State, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the latest published state
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SearchQuery returns the current query text
func (p *Presenter) SearchQuery() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Updates delivers published states. Only the most recent undelivered state is kept.
// The channel is closed by Close.
func (p *Presenter) Updates() <-chan State {
	return p.updates
}

// Dispatch handles a screen event
func (p *Presenter) Dispatch(event Event) {
	switch e := event.(type) {
	case SearchQueryChanged:
		p.queryChanged(e.Query)
	case BackClicked:
		p.mu.Lock()
		p.cancelPendingLocked()
		onBack := p.onBack
		p.mu.Unlock()

		if onBack != nil {
			onBack()
		}
	}
}

// Close cancels pending searches, waits for them and closes Updates
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cancelPendingLocked()
	p.mu.Unlock()

	p.wg.Wait()
	close(p.updates)
}

func (p *Presenter) queryChanged(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.query = query
	p.cancelPendingLocked()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		p.publishLocked(State{})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	generation := p.generation

	p.wg.Add(1)
	go p.search(ctx, generation, trimmed)
}

func (p *Presenter) search(ctx context.Context, generation uint64, query string) {
	defer p.wg.Done()

	if p.debounce > 0 {
		timer := time.NewTimer(p.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	results, err := p.searcher.SearchPosts(ctx, query)
	if ctx.Err() != nil {
		return
	}
	var invalid *coreerrors.ValidationError
	if errors.As(err, &invalid) {
		p.publishIfCurrent(generation, State{Rejected: invalid.Message})
		return
	}
	if err != nil {
		if p.logger != nil {
			p.logger.Error("Search failed", map[string]interface{}{
				"query": query,
				"error": err.Error(),
			})
		}
		return
	}

	p.publishIfCurrent(generation, State{SearchResults: results})
}

func (p *Presenter) publishIfCurrent(generation uint64, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || generation != p.generation {
		return
	}
	p.publishLocked(state)
}

// cancelPendingLocked invalidates any in-flight search
func (p *Presenter) cancelPendingLocked() {
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Presenter) publishLocked(state State) {
	p.state = state

	select {
	case <-p.updates:
	default:
	}
	p.updates <- state
}
