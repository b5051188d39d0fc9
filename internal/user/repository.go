package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/api"
)

// Repository reads and creates users through the marketplace API
type Repository struct {
	client *api.Client
}

// NewRepository creates a new user repository with the API client injected
func NewRepository(client *api.Client) *Repository {
	return &Repository{client: client}
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	if err := r.client.Get(ctx, "/users/"+id.String(), nil, user); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Me retrieves the user owning the session credential in ctx
func (r *Repository) Me(ctx context.Context) (*User, error) {
	user := &User{}
	if err := r.client.Get(ctx, "/users/me/", nil, user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// Signup creates a new account
func (r *Repository) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	user := &User{}
	if err := r.client.PostJSON(ctx, "/users/signup", req, user); err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return user, nil
}
