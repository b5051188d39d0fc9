package notification

import (
	"context"
	"sync"
)

// Notifier receives notifications produced while serving a request.
type Notifier interface {
	Notify(n Notification)
}

// Recorder collects notifications for one request. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

type discard struct{}

func (discard) Notify(Notification) {}

type notifierKey struct{}

type flashKey struct{}

// WithNotifier returns a context whose notifications go to n.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// FromContext returns the notifier carried by ctx. Without one,
// notifications are dropped.
func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierKey{}).(Notifier); ok {
		return n
	}
	return discard{}
}

// Emit sends n to the context's notifier.
func Emit(ctx context.Context, n Notification) {
	FromContext(ctx).Notify(n)
}

// Collected returns what the context's Recorder holds, or nil when the
// notifier is not a Recorder.
func Collected(ctx context.Context) []Notification {
	if r, ok := FromContext(ctx).(*Recorder); ok {
		return r.Notifications()
	}
	return nil
}

// WithFlash returns a context whose deferred notifications go to q.
func WithFlash(ctx context.Context, q *Queue) context.Context {
	return context.WithValue(ctx, flashKey{}, q)
}

// FlashFrom returns the flash queue carried by ctx, if any.
func FlashFrom(ctx context.Context) (*Queue, bool) {
	q, ok := ctx.Value(flashKey{}).(*Queue)
	return q, ok && q != nil
}

// Flash defers n to the session's next page load. Without a flash queue
// it is emitted immediately instead.
func Flash(ctx context.Context, n Notification) {
	if q, ok := FlashFrom(ctx); ok {
		q.Push(n)
		return
	}
	Emit(ctx, n)
}
