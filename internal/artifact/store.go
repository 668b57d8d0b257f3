// Package artifact stages synthesized audio on disk for the short window
// between synthesis and delivery. Every artifact is ephemeral: it is removed
// when consumed, when its session disconnects, or at the latest when the
// session is swept.
package artifact

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Kind distinguishes the two artifact families the pipeline produces.
type Kind string

const (
	KindGreeting Kind = "greeting"
	KindResponse Kind = "response"
)

var (
	ErrUnknownHandle = errors.New("artifact: unknown handle")
)

// Handle names one staged artifact. Handles are unique per request, so two
// concurrent requests in the same session never collide on a file.
type Handle string

// Store owns a directory of staged audio files and the per-session index
// needed to sweep them.
type Store struct {
	dir string

	mu    sync.Mutex
	owned map[Handle]string            // handle -> absolute path
	bySes map[string]map[Handle]struct{} // session id -> handles
}

// NewStore creates the staging directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("artifact: empty staging directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create staging dir: %w", err)
	}
	return &Store{
		dir:   dir,
		owned: make(map[Handle]string),
		bySes: make(map[string]map[Handle]struct{}),
	}, nil
}

// Dir returns the staging directory root.
func (s *Store) Dir() string { return s.dir }

// Stage writes data to a fresh file owned by sessionID and returns its
// handle.
func (s *Store) Stage(sessionID string, kind Kind, data []byte) (Handle, error) {
	h := Handle(fmt.Sprintf("%s-%s-%s.mp3", kind, sessionID, uuid.NewString()))
	path := filepath.Join(s.dir, string(h))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact: stage %s: %w", kind, err)
	}

	s.mu.Lock()
	s.owned[h] = path
	set, ok := s.bySes[sessionID]
	if !ok {
		set = make(map[Handle]struct{})
		s.bySes[sessionID] = set
	}
	set[h] = struct{}{}
	s.mu.Unlock()
	return h, nil
}

// Consume reads the artifact back and removes it. Removal is best effort:
// a delete failure is logged and the data is still returned, since the
// janitor sweep will retire the file later.
func (s *Store) Consume(sessionID string, h Handle) ([]byte, error) {
	s.mu.Lock()
	path, ok := s.owned[h]
	if ok {
		delete(s.owned, h)
		if set := s.bySes[sessionID]; set != nil {
			delete(set, h)
			if len(set) == 0 {
				delete(s.bySes, sessionID)
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrUnknownHandle
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: consume %s: %w", h, err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("artifact: remove %s after consume: %v", h, err)
	}
	return data, nil
}

// SweepSession removes every artifact still staged for sessionID. It is
// idempotent; sweeping a session with nothing staged is a no-op.
func (s *Store) SweepSession(sessionID string) int {
	s.mu.Lock()
	set := s.bySes[sessionID]
	delete(s.bySes, sessionID)
	paths := make([]string, 0, len(set))
	for h := range set {
		paths = append(paths, s.owned[h])
		delete(s.owned, h)
	}
	s.mu.Unlock()

	removed := 0
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("artifact: sweep remove %s: %v", filepath.Base(path), err)
			continue
		}
		removed++
	}
	return removed
}

// Count reports how many artifacts are currently staged.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owned)
}
