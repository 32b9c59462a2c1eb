package session

import (
	"context"
	"log"
	"sync"
	"time"
)

type entry struct {
	session    *Session
	lastActive time.Time
}

// Registry owns the session-id → Session map for the serving layer.
// Creation is synchronized so two concurrent first-messages for the same id
// share one session, and idle sessions are evicted after a TTL so memory
// stays bounded.
type Registry struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxHistory int
	ttl        time.Duration
}

// NewRegistry creates a registry. Sessions idle longer than ttl are removed
// by Sweep.
func NewRegistry(maxHistory int, ttl time.Duration) *Registry {
	return &Registry{
		entries:    make(map[string]*entry),
		maxHistory: maxHistory,
		ttl:        ttl,
	}
}

// GetOrCreate returns the session for id, creating it on first use, and
// marks it active.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{session: newSession(id, r.maxHistory)}
		r.entries[id] = e
	}
	e.lastActive = time.Now()
	return e.session
}

// Get returns the session for id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.session
	}
	return nil
}

// Evict removes the session for id, if present.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts sessions idle since before now-ttl and returns the count.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		if now.Sub(e.lastActive) > r.ttl {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs periodic sweeps until ctx is cancelled.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := r.Sweep(now); n > 0 {
					log.Printf("session: evicted %d idle session(s)", n)
				}
			}
		}
	}()
}
