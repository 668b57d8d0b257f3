package brain

import (
	"context"
	"sync"
)

// MockAdapter is the keyless fallback brain; it also records calls for
// tests.
type MockAdapter struct {
	mu       sync.Mutex
	Response string
	Err      error
	calls    []string
}

func NewMockAdapter(response string) *MockAdapter {
	if response == "" {
		response = "I heard you, but I'm running without a language model right now."
	}
	return &MockAdapter{Response: response}
}

func (m *MockAdapter) Generate(_ context.Context, _, userText string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, userText)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockAdapter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
