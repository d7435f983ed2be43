package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/anuvad/internal/document"
)

var errTooManySessions = errors.New("too many open document sessions")

type registryEntry struct {
	session  *document.Session
	lastUsed time.Time
}

// registry holds one document session per client-held id. Sessions idle
// for longer than ttl are evicted by sweep; a session mid-translation is
// never evicted.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	factory  func() *document.Session
	ttl      time.Duration
	limit    int
	now      func() time.Time
}

func newRegistry(factory func() *document.Session, ttl time.Duration, limit int) *registry {
	return &registry{
		sessions: make(map[string]*registryEntry),
		factory:  factory,
		ttl:      ttl,
		limit:    limit,
		now:      time.Now,
	}
}

func (r *registry) create() (string, *document.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.sessions) >= r.limit {
		r.sweepLocked()
		if len(r.sessions) >= r.limit {
			return "", nil, errTooManySessions
		}
	}

	id := uuid.NewString()
	s := r.factory()
	r.sessions[id] = &registryEntry{session: s, lastUsed: r.now()}
	return id, s, nil
}

// get returns the session and marks it as used.
func (r *registry) get(id string) (*document.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.session, true
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep evicts idle sessions and reports how many were removed.
func (r *registry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *registry) sweepLocked() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	n := 0
	for id, e := range r.sessions {
		if e.lastUsed.After(cutoff) || e.session.Status() == document.StatusTranslating {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	return n
}

// janitor sweeps every interval until ctx is done.
func (r *registry) janitor(ctx context.Context, interval time.Duration, onSweep func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// sweepInterval checks a quarter as often as the ttl, within [1s, 1m].
func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}
