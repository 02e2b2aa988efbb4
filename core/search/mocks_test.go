package search

import (
	"context"
	"sync"

	"rss-reader-app/core/domain"
)

// mockStore is a mock implementation of the Store interface
type mockStore struct {
	searchFunc func(ctx context.Context, query string, limit int) ([]domain.Post, error)
}

func (m *mockStore) SaveFeed(ctx context.Context, feed *domain.Feed) error {
	return nil
}

func (m *mockStore) Feeds(ctx context.Context) ([]domain.Feed, error) {
	return nil, nil
}

func (m *mockStore) SavePosts(ctx context.Context, posts []domain.Post) error {
	return nil
}

func (m *mockStore) SearchPosts(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit)
	}
	return nil, nil
}

// mockSearcher is a mock implementation of the Searcher interface
type mockSearcher struct {
	mu         sync.Mutex
	queries    []string
	searchFunc func(ctx context.Context, query string) ([]domain.Post, error)
}

func (m *mockSearcher) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return nil, nil
}

func (m *mockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}

func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}
