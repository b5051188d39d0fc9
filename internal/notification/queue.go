package notification

import "sync"

// Queue holds notifications that outlive the request that produced them,
// such as "Login successful" shown after the page reloads. Drain reads
// and clears it in one step, so each entry is delivered once.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue creates an empty flash queue
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends n to the queue
func (q *Queue) Push(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Notify makes a Queue usable as a Notifier.
func (q *Queue) Notify(n Notification) { q.Push(n) }

// Drain returns every queued notification in push order and empties the
// queue. The result is never nil.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len reports how many notifications are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
