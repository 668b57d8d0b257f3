package speech

import (
	"context"
	"strings"
	"sync"
)

// MockRecognizer returns a canned transcript for any non-empty clip. Used in
// tests and when no Google credentials are configured.
type MockRecognizer struct {
	mu         sync.Mutex
	Transcript string
	Err        error
	calls      int
}

func NewMockRecognizer(transcript string) *MockRecognizer {
	return &MockRecognizer{Transcript: transcript}
}

func (m *MockRecognizer) Recognize(_ context.Context, pcm []byte, _ int, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(pcm) == 0 {
		return "", nil
	}
	return m.Transcript, nil
}

func (m *MockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSynthesizer echoes the input text as fake audio bytes so round-trip
// tests can assert non-empty output for non-empty input.
type MockSynthesizer struct {
	mu    sync.Mutex
	Err   error
	calls int
}

func NewMockSynthesizer() *MockSynthesizer { return &MockSynthesizer{} }

func (m *MockSynthesizer) Synthesize(_ context.Context, text string, voice Voice) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []byte("audio:" + voice.Format() + ":" + text), nil
}

func (m *MockSynthesizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
