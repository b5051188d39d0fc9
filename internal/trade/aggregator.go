package trade

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/plant"
	"github.com/fkhayef/plantswap/internal/settle"
)

// PlantLookup fetches a single plant. Implementations must not notify;
// enrichment failures stay silent.
type PlantLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*plant.Plant, error)
}

// Aggregator lists trade requests and attaches both plants to each one.
type Aggregator struct {
	repo   *Repository
	plants PlantLookup
	logger *slog.Logger
}

// NewAggregator creates a new trade request aggregator
func NewAggregator(repo *Repository, plants PlantLookup, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{repo: repo, plants: plants, logger: logger.With("component", "trade_aggregator")}
}

// List fetches the trade requests in scope and enriches them. Every
// record costs two plant lookups, all started together; a failed lookup
// leaves that side nil. Only a failed list fetch is reported.
func (a *Aggregator) List(ctx context.Context, scope Scope) ([]Enriched, error) {
	records, err := a.repo.List(ctx, scope)
	if err != nil {
		notification.EmitError(ctx, err, "Error")
		return nil, err
	}
	if len(records) == 0 {
		return []Enriched{}, nil
	}

	ids := make([]uuid.UUID, 0, 2*len(records))
	for _, r := range records {
		ids = append(ids, r.OutgoingPlantID, r.IncomingPlantID)
	}

	tasks := make([]settle.Task[*plant.Plant], len(ids))
	for i, id := range ids {
		id := id
		tasks[i] = func(ctx context.Context) (*plant.Plant, error) {
			return a.plants.GetByID(ctx, id)
		}
	}

	byID := make(map[uuid.UUID]*plant.Plant, len(ids))
	results := settle.All(ctx, 0, tasks)
	for i, res := range results {
		if res.Err != nil {
			a.logger.Debug("failed to fetch trade plant", "plant_id", ids[i], "error", res.Err)
			continue
		}
		byID[ids[i]] = res.Value
	}
	if n := settle.Failed(results); n > 0 {
		a.logger.Warn("trade plants unresolved", "failed", n, "plants", len(ids))
	}

	out := make([]Enriched, len(records))
	for i, r := range records {
		out[i] = Enrich(r, byID)
	}
	return out, nil
}
