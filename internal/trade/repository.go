package trade

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fkhayef/plantswap/internal/api"
)

// Repository talks to the trade request routes of the marketplace API
type Repository struct {
	client *api.Client
}

// NewRepository creates a new trade repository with the API client injected
func NewRepository(client *api.Client) *Repository {
	return &Repository{client: client}
}

// List retrieves the caller's trade requests in scope
func (r *Repository) List(ctx context.Context, scope Scope) ([]Record, error) {
	records, err := api.GetList[Record](ctx, r.client, "/requests/"+string(scope), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade requests: %w", err)
	}
	return records, nil
}

// Get retrieves one trade request
func (r *Repository) Get(ctx context.Context, key Key) (*Record, error) {
	rec := &Record{}
	if err := r.client.Get(ctx, "/requests/"+key.Path(), nil, rec); err != nil {
		return nil, fmt.Errorf("failed to get trade request: %w", err)
	}
	return rec, nil
}

// Create offers the outgoing plant for the incoming one. The message
// travels as a query parameter.
func (r *Repository) Create(ctx context.Context, key Key, message string) (*Record, error) {
	var query url.Values
	if message != "" {
		query = url.Values{"message": {message}}
	}

	rec := &Record{}
	if err := r.client.Post(ctx, "/requests/create/"+key.Path(), query, rec); err != nil {
		return nil, fmt.Errorf("failed to create trade request: %w", err)
	}
	return rec, nil
}

// Accept answers a received trade request positively
func (r *Repository) Accept(ctx context.Context, key Key) error {
	if err := r.client.Post(ctx, "/requests/accept/"+key.Path(), nil, nil); err != nil {
		return fmt.Errorf("failed to accept trade request: %w", err)
	}
	return nil
}

// Reject declines a received trade request
func (r *Repository) Reject(ctx context.Context, key Key) error {
	if err := r.client.Post(ctx, "/requests/reject/"+key.Path(), nil, nil); err != nil {
		return fmt.Errorf("failed to decline trade request: %w", err)
	}
	return nil
}

// Delete withdraws or dismisses a trade request
func (r *Repository) Delete(ctx context.Context, key Key) error {
	if err := r.client.Post(ctx, "/requests/delete/"+key.Path(), nil, nil); err != nil {
		return fmt.Errorf("failed to delete trade request: %w", err)
	}
	return nil
}
