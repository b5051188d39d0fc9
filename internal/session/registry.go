// Package session keeps per-browser-session state in memory and evicts it
// after a period of inactivity.
package session

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Registry maps gateway session ids to lazily created values of T.
type Registry[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	create  func() T
	entries map[string]*entry[T]
	now     func() time.Time
}

// NewRegistry creates a registry whose entries expire after ttl without
// access. create builds the value for a session seen for the first time.
func NewRegistry[T any](ttl time.Duration, create func() T) *Registry[T] {
	return &Registry[T]{
		ttl:     ttl,
		create:  create,
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Get returns the value for id, creating it when absent or expired.
func (r *Registry[T]) Get(id string) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e, ok := r.entries[id]
	if !ok || r.expired(e, now) {
		e = &entry[T]{value: r.create()}
		r.entries[id] = e
	}
	e.lastSeen = now
	return e.value
}

// Delete drops the value for id.
func (r *Registry[T]) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of entries, expired ones included until the next
// Sweep.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (r *Registry[T]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if r.expired(e, now) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry[T]) expired(e *entry[T], now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}
