package home

import (
	"context"
	"sync"

	"rss-reader-app/core/domain"
	"rss-reader-app/core/feed"
)

// mockLoader is a mock implementation of the FeedLoader interface
type mockLoader struct {
	parseSingleFunc func(ctx context.Context, feedURL string) (*domain.Feed, error)
	parseFeedsFunc  func(ctx context.Context, urls []string) ([]feed.Result, error)

	mu          sync.Mutex
	invalidated []string
}

func (m *mockLoader) ParseSingleFeed(ctx context.Context, feedURL string) (*domain.Feed, error) {
	if m.parseSingleFunc != nil {
		return m.parseSingleFunc(ctx, feedURL)
	}
	return nil, nil
}

func (m *mockLoader) ParseFeeds(ctx context.Context, urls []string) ([]feed.Result, error) {
	if m.parseFeedsFunc != nil {
		return m.parseFeedsFunc(ctx, urls)
	}
	return nil, nil
}

func (m *mockLoader) InvalidateCache(ctx context.Context, feedURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, feedURL)
	return nil
}

// mockStore is an in-memory Store keyed by feed URL
type mockStore struct {
	feeds       []domain.Feed
	posts       []domain.Post
	saveFeedErr error
	feedsErr    error
}

func (m *mockStore) SaveFeed(ctx context.Context, f *domain.Feed) error {
	if m.saveFeedErr != nil {
		return m.saveFeedErr
	}
	for i, existing := range m.feeds {
		if existing.URL == f.URL {
			f.ID = existing.ID
			m.feeds[i] = *f
			m.feeds[i].Posts = nil
			return nil
		}
	}
	stored := *f
	stored.Posts = nil
	m.feeds = append(m.feeds, stored)
	return nil
}

func (m *mockStore) Feeds(ctx context.Context) ([]domain.Feed, error) {
	if m.feedsErr != nil {
		return nil, m.feedsErr
	}
	return append([]domain.Feed(nil), m.feeds...), nil
}

func (m *mockStore) SavePosts(ctx context.Context, posts []domain.Post) error {
	m.posts = append(m.posts, posts...)
	return nil
}

func (m *mockStore) SearchPosts(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	return nil, nil
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// mockLogger records log calls
type mockLogger struct {
	entries []logEntry
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {
	m.entries = append(m.entries, logEntry{"debug", msg, fields})
}

func (m *mockLogger) Info(msg string, fields map[string]interface{}) {
	m.entries = append(m.entries, logEntry{"info", msg, fields})
}

func (m *mockLogger) Warn(msg string, fields map[string]interface{}) {
	m.entries = append(m.entries, logEntry{"warn", msg, fields})
}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.entries = append(m.entries, logEntry{"error", msg, fields})
}

func (m *mockLogger) byLevel(level string) []logEntry {
	var out []logEntry
	for _, e := range m.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}
