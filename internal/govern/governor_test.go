package govern

import (
	"errors"
	"testing"
	"time"

	"github.com/violetvoice/violet/internal/session"
)

func TestAdmitFirstTenThenReject(t *testing.T) {
	g := New(10, time.Second)
	base := time.Now()

	for count := 0; count < 10; count++ {
		snap := &session.Session{
			ID:            "s1",
			RequestCount:  count,
			LastRequestAt: base.Add(-2 * time.Second),
		}
		if err := g.Admit(snap); err != nil {
			t.Fatalf("Admit() at count %d error = %v", count, err)
		}
	}

	eleventh := &session.Session{
		ID:            "s1",
		RequestCount:  10,
		LastRequestAt: base.Add(-2 * time.Second),
	}
	if err := g.Admit(eleventh); !errors.Is(err, ErrSessionLimitExceeded) {
		t.Fatalf("Admit() at count 10 error = %v, want ErrSessionLimitExceeded", err)
	}
}

func TestAdmitCooldown(t *testing.T) {
	g := New(10, time.Second)
	now := time.Now()
	g.now = func() time.Time { return now }

	tooSoon := &session.Session{RequestCount: 1, LastRequestAt: now.Add(-500 * time.Millisecond)}
	if err := g.Admit(tooSoon); !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("Admit() within cooldown error = %v, want ErrCooldownActive", err)
	}

	spaced := &session.Session{RequestCount: 1, LastRequestAt: now.Add(-time.Second)}
	if err := g.Admit(spaced); err != nil {
		t.Fatalf("Admit() after cooldown error = %v", err)
	}
}

func TestAdmitCeilingBeatsCooldown(t *testing.T) {
	// Both limits violated: the ceiling error must win.
	g := New(10, time.Second)
	now := time.Now()
	g.now = func() time.Time { return now }

	snap := &session.Session{RequestCount: 10, LastRequestAt: now.Add(-10 * time.Millisecond)}
	if err := g.Admit(snap); !errors.Is(err, ErrSessionLimitExceeded) {
		t.Fatalf("Admit() error = %v, want ErrSessionLimitExceeded", err)
	}
}
