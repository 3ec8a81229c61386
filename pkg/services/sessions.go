package services

import (
	"context"
	"sync"
	"time"
)

type uploadSession struct {
	orchestrator *UploadOrchestrator
	lastSeen     time.Time
}

// SessionRegistry keeps one UploadOrchestrator per browser session in memory.
type SessionRegistry struct {
	newOrchestrator func() *UploadOrchestrator
	sessions        map[string]*uploadSession
	mu              sync.RWMutex
	ttl             time.Duration
	now             func() time.Time
}

func NewSessionRegistry(ttl time.Duration, newOrchestrator func() *UploadOrchestrator) *SessionRegistry {
	return &SessionRegistry{
		newOrchestrator: newOrchestrator,
		sessions:        make(map[string]*uploadSession),
		ttl:             ttl,
		now:             time.Now,
	}
}

// Get returns the session's orchestrator, creating it on first use.
func (r *SessionRegistry) Get(id string) *UploadOrchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		s = &uploadSession{orchestrator: r.newOrchestrator()}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s.orchestrator
}

// Lookup returns the session's orchestrator without creating one.
func (r *SessionRegistry) Lookup(id string) (*UploadOrchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.orchestrator, true
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
// Sessions with an upload in flight are kept until it settles.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.orchestrator.State().Uploading {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := r.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
