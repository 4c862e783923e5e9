package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"archedit/internal/domain"
)

// Registry owns the live sessions of the process.
type Registry struct {
	deps *Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	deps.normalize()
	return &Registry{deps: &deps, sessions: map[string]*Session{}}
}

// Create starts a new empty session.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	s := NewSession(id, r.deps)
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.deps.Logger.Info().Str("session_id", id).Msg("editor: session created")
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NotFound(domain.CodeSessionNotFound, "session not found")
	}
	return s, nil
}

// Delete forgets a session. Unknown ids are not an error.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than ttl and reports how many went.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.deps.Now().Add(-ttl)
	r.mu.RLock()
	var stale []string
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()
	for _, id := range stale {
		r.Delete(id)
	}
	return len(stale)
}

// RunJanitor sweeps every interval until ctx ends.
func (r *Registry) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ttl); n > 0 {
				r.deps.Logger.Info().Int("count", n).Msg("editor: idle sessions removed")
			}
		}
	}
}
