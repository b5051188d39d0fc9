package plant

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/settle"
)

// OwnerLookup resolves the display name of a plant owner.
type OwnerLookup interface {
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}

// DirectoryLoader fetches the public plant list together with the names
// of the plants' owners.
type DirectoryLoader struct {
	repo   *Repository
	owners OwnerLookup
	limit  int
	logger *slog.Logger

	inFlight atomic.Int32
	seq      atomic.Uint64

	mu        sync.RWMutex
	snapshot  Directory
	published uint64
}

// NewDirectoryLoader creates a loader. limit bounds concurrent owner
// lookups; zero means no bound.
func NewDirectoryLoader(repo *Repository, owners OwnerLookup, limit int, logger *slog.Logger) *DirectoryLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryLoader{
		repo:     repo,
		owners:   owners,
		limit:    limit,
		logger:   logger.With("component", "directory"),
		snapshot: Directory{Plants: []Plant{}, Owners: map[uuid.UUID]string{}},
	}
}

// Load fetches the plant list and resolves every distinct owner once.
// A failed owner lookup yields UnknownOwner; only a failed list fetch
// fails the load, with a single notification. The snapshot only moves
// forward: a load that finishes after a later-started one is returned to
// its caller but not published.
func (l *DirectoryLoader) Load(ctx context.Context) (Directory, error) {
	l.inFlight.Add(1)
	defer l.inFlight.Add(-1)
	seq := l.seq.Add(1)

	plants, err := l.repo.List(ctx, 0, 0)
	if err != nil {
		l.logger.Error("failed to fetch plants", "error", err)
		notification.Emit(ctx, notification.Error("Error", "Could not fetch plants."))
		return Directory{}, err
	}

	ids := distinctOwners(plants)
	tasks := make([]settle.Task[string], len(ids))
	for i, id := range ids {
		id := id
		tasks[i] = func(ctx context.Context) (string, error) {
			return l.owners.DisplayName(ctx, id)
		}
	}

	owners := make(map[uuid.UUID]string, len(ids))
	results := settle.All(ctx, l.limit, tasks)
	for i, res := range results {
		if res.Err != nil {
			l.logger.Warn("failed to fetch owner", "owner_id", ids[i], "error", res.Err)
			owners[ids[i]] = UnknownOwner
			continue
		}
		owners[ids[i]] = res.Value
	}

	if n := settle.Failed(results); n > 0 {
		l.logger.Warn("directory has unknown owners", "failed", n, "owners", len(ids))
	}

	dir := Directory{Plants: plants, Owners: owners}
	l.mu.Lock()
	if seq > l.published {
		l.snapshot = dir
		l.published = seq
	} else {
		l.logger.Debug("stale directory load dropped", "seq", seq, "published", l.published)
	}
	l.mu.Unlock()

	return dir, nil
}

// Loading reports whether a load is outstanding.
func (l *DirectoryLoader) Loading() bool {
	return l.inFlight.Load() > 0
}

// Snapshot returns the last completed directory.
func (l *DirectoryLoader) Snapshot() Directory {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// distinctOwners returns each owner id once, in first-seen order.
func distinctOwners(plants []Plant) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(plants))
	ids := make([]uuid.UUID, 0, len(plants))
	for _, p := range plants {
		if _, ok := seen[p.OwnerID]; ok {
			continue
		}
		seen[p.OwnerID] = struct{}{}
		ids = append(ids, p.OwnerID)
	}
	return ids
}
