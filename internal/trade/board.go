package trade

import "sync"

// Board is a session's local copy of its enriched trade requests.
type Board struct {
	mu    sync.Mutex
	items []Enriched
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{}
}

// Replace swaps the board's content for items.
func (b *Board) Replace(items []Enriched) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]Enriched(nil), items...)
}

// Snapshot returns a copy of the board.
func (b *Board) Snapshot() []Enriched {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Enriched, len(b.items))
	copy(out, b.items)
	return out
}

// Remove drops the request with key and reports whether it was present.
func (b *Board) Remove(key Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.items {
		if e.Key() == key {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Transition moves the request with key to status to.
func (b *Board) Transition(key Key, to Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Key() != key {
			continue
		}
		if !b.items[i].Status.CanTransition(to) {
			return ErrInvalidTransition
		}
		b.items[i].Status = to
		return nil
	}
	return ErrRequestNotFound
}
