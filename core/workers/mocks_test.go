package workers

import (
	"context"
	"sync"

	"rss-reader-app/core/home"
)

// mockRefresher is a mock implementation of the Refresher interface
type mockRefresher struct {
	mu          sync.Mutex
	calls       int
	refreshFunc func(ctx context.Context) ([]home.RefreshResult, error)
}

func (m *mockRefresher) RefreshAll(ctx context.Context) ([]home.RefreshResult, error) {
	m.mu.Lock()
	m.calls++
	fn := m.refreshFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *mockRefresher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) record(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) { m.record(msg) }
func (m *mockLogger) Info(msg string, fields map[string]interface{})  { m.record(msg) }
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  { m.record(msg) }
func (m *mockLogger) Error(msg string, fields map[string]interface{}) { m.record(msg) }

func (m *mockLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}
