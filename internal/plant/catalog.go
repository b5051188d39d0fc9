package plant

import (
	"sync"

	"github.com/google/uuid"
)

// Catalog is a session's local copy of its own plants.
type Catalog struct {
	mu     sync.Mutex
	plants []Plant
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Merge reconciles the catalog with a fresh server list. Plants still
// present keep their position and take the fresh data, vanished ones are
// dropped, new ones are appended in server order. It returns the result.
func (c *Catalog) Merge(fresh []Plant) []Plant {
	c.mu.Lock()
	defer c.mu.Unlock()

	byID := make(map[uuid.UUID]Plant, len(fresh))
	for _, p := range fresh {
		byID[p.ID] = p
	}

	merged := make([]Plant, 0, len(fresh))
	kept := make(map[uuid.UUID]struct{}, len(c.plants))
	for _, old := range c.plants {
		if p, ok := byID[old.ID]; ok {
			merged = append(merged, p)
			kept[p.ID] = struct{}{}
		}
	}
	for _, p := range fresh {
		if _, ok := kept[p.ID]; !ok {
			merged = append(merged, p)
			kept[p.ID] = struct{}{}
		}
	}

	c.plants = merged
	return c.snapshotLocked()
}

// Remove drops the plant with id and reports whether it was present.
func (c *Catalog) Remove(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.plants {
		if p.ID == id {
			c.plants = append(c.plants[:i], c.plants[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the catalog.
func (c *Catalog) Snapshot() []Plant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Catalog) snapshotLocked() []Plant {
	out := make([]Plant, len(c.plants))
	copy(out, c.plants)
	return out
}
