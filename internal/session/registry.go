package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrDuplicateSession = errors.New("session already open")
	ErrUnknownSession   = errors.New("unknown session")
)

// Session is the per-connection record tracked by the registry.
type Session struct {
	ID            string    `json:"session_id"`
	RequestCount  int       `json:"request_count"`
	LastRequestAt time.Time `json:"last_request_at"`
	ConnectedAt   time.Time `json:"connected_at"`
}

// Registry owns all Session records. Every mutation goes through it; callers
// only ever see cloned snapshots.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	onEvict  func(id string)
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// SetEvictHook registers a callback invoked (outside the lock) for every
// session removed by the idle sweep.
func (r *Registry) SetEvictHook(hook func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = hook
}

// Open creates the record for a new connection.
func (r *Registry) Open(id string) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:            id,
		LastRequestAt: now,
		ConnectedAt:   now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		return nil, ErrDuplicateSession
	}
	r.sessions[id] = s
	return clone(s), nil
}

// Get returns a snapshot of the session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return clone(s), nil
}

// Touch records one accepted request: RequestCount goes up by exactly one
// and LastRequestAt is stamped. Rejected requests must not call Touch.
func (r *Registry) Touch(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	s.RequestCount++
	s.LastRequestAt = time.Now().UTC()
	return clone(s), nil
}

// Close removes the record. Idempotent: closing an absent session is a no-op,
// and a closed id is never resurrected here.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Sweep removes every session idle longer than maxIdle and returns the
// evicted ids.
func (r *Registry) Sweep(maxIdle time.Duration) []string {
	now := time.Now().UTC()
	var evicted []string

	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastRequestAt) <= maxIdle {
			continue
		}
		delete(r.sessions, id)
		evicted = append(evicted, id)
	}
	hook := r.onEvict
	r.mu.Unlock()

	if hook != nil {
		for _, id := range evicted {
			hook(id)
		}
	}
	return evicted
}

// Count reports the number of open sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartJanitor runs Sweep on a fixed period until ctx is done.
func (r *Registry) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(maxIdle)
			}
		}
	}()
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
