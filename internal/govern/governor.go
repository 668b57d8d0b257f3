// Package govern enforces the per-session half of the admission policy: a
// lifetime request ceiling and a minimum inter-request cooldown. The per-IP
// fixed-window ceiling lives in the HTTP layer, before sessions exist.
package govern

import (
	"errors"
	"time"

	"github.com/violetvoice/violet/internal/session"
)

var (
	ErrSessionLimitExceeded = errors.New("session request limit exceeded")
	ErrCooldownActive       = errors.New("too many requests")
)

type Governor struct {
	requestLimit int
	cooldown     time.Duration
	now          func() time.Time
}

func New(requestLimit int, cooldown time.Duration) *Governor {
	if requestLimit <= 0 {
		requestLimit = 10
	}
	return &Governor{
		requestLimit: requestLimit,
		cooldown:     cooldown,
		now:          time.Now,
	}
}

// Admit decides whether the session may run one more request. It takes a
// snapshot from before the registry Touch so a rejection leaves the session
// record untouched. Ceiling is checked before cooldown; first failure wins.
func (g *Governor) Admit(s *session.Session) error {
	if s.RequestCount+1 > g.requestLimit {
		return ErrSessionLimitExceeded
	}
	if g.cooldown > 0 && g.now().Sub(s.LastRequestAt) < g.cooldown {
		return ErrCooldownActive
	}
	return nil
}
