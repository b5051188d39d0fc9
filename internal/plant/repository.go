package plant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/api"
)

// Repository reads and writes plants through the marketplace API
type Repository struct {
	client *api.Client
}

// NewRepository creates a new plant repository with the API client injected
func NewRepository(client *api.Client) *Repository {
	return &Repository{client: client}
}

// List retrieves the public plant list. limit <= 0 leaves paging to the API.
func (r *Repository) List(ctx context.Context, skip, limit int) ([]Plant, error) {
	query := url.Values{}
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	plants, err := api.GetList[Plant](ctx, r.client, "/plants/", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

// ListOwn retrieves the plants owned by the logged-in user
func (r *Repository) ListOwn(ctx context.Context) ([]Plant, error) {
	plants, err := api.GetList[Plant](ctx, r.client, "/plants/own", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list own plants: %w", err)
	}
	return plants, nil
}

// GetByID retrieves a plant by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Plant, error) {
	p := &Plant{}
	if err := r.client.Get(ctx, "/plants/"+id.String(), nil, p); err != nil {
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}
	return p, nil
}

// Create uploads a new listing
func (r *Repository) Create(ctx context.Context, req *CreatePlantRequest) (*Plant, error) {
	fields := url.Values{}
	fields.Set("name", req.Name)
	fields.Set("description", req.Description)
	fields.Set("city", req.City)
	for _, tag := range req.Tags {
		fields.Add("tags", tag)
	}

	var files []api.File
	if req.Image != nil {
		files = append(files, api.File{Field: "image", Name: req.Image.Filename, Content: req.Image.Content})
	}

	p := &Plant{}
	if err := r.client.PostMultipart(ctx, "/plants/create", fields, files, p); err != nil {
		return nil, fmt.Errorf("failed to create plant: %w", err)
	}
	return p, nil
}

// Delete removes a listing owned by the logged-in user
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Post(ctx, "/plants/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}
	return nil
}
