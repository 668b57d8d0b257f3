package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "staging"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestStageAndConsumeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	h, err := s.Stage("ses-1", KindResponse, []byte("mp3 bytes"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if !strings.HasPrefix(string(h), "response-ses-1-") || !strings.HasSuffix(string(h), ".mp3") {
		t.Fatalf("handle = %q, want response-ses-1-<uuid>.mp3", h)
	}

	data, err := s.Consume("ses-1", h)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if string(data) != "mp3 bytes" {
		t.Fatalf("data = %q", data)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), string(h))); !os.IsNotExist(err) {
		t.Fatalf("file survived consume: stat err = %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("Count() = %d after consume, want 0", s.Count())
	}
}

func TestConsumeTwiceReturnsUnknownHandle(t *testing.T) {
	s := newTestStore(t)

	h, err := s.Stage("ses-1", KindGreeting, []byte("hello"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if _, err := s.Consume("ses-1", h); err != nil {
		t.Fatalf("first Consume() error = %v", err)
	}
	if _, err := s.Consume("ses-1", h); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("second Consume() error = %v, want ErrUnknownHandle", err)
	}
}

func TestHandlesAreUniquePerRequest(t *testing.T) {
	s := newTestStore(t)

	h1, err := s.Stage("ses-1", KindResponse, []byte("a"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	h2, err := s.Stage("ses-1", KindResponse, []byte("b"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two stages produced the same handle %q", h1)
	}
}

func TestSweepSessionRemovesOnlyThatSession(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Stage("ses-1", KindResponse, []byte("a")); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if _, err := s.Stage("ses-1", KindGreeting, []byte("b")); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	keep, err := s.Stage("ses-2", KindResponse, []byte("c"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if removed := s.SweepSession("ses-1"); removed != 2 {
		t.Fatalf("SweepSession() = %d, want 2", removed)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d after sweep, want 1", s.Count())
	}
	if _, err := s.Consume("ses-2", keep); err != nil {
		t.Fatalf("unswept session lost its artifact: %v", err)
	}

	// Sweeping again is a no-op.
	if removed := s.SweepSession("ses-1"); removed != 0 {
		t.Fatalf("repeat SweepSession() = %d, want 0", removed)
	}
}

func TestSweepToleratesAlreadyRemovedFiles(t *testing.T) {
	s := newTestStore(t)

	h, err := s.Stage("ses-1", KindResponse, []byte("a"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := os.Remove(filepath.Join(s.Dir(), string(h))); err != nil {
		t.Fatalf("remove staged file: %v", err)
	}
	if removed := s.SweepSession("ses-1"); removed != 1 {
		t.Fatalf("SweepSession() = %d, want 1", removed)
	}
}
