package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/api"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a user by their ID. A missing user matches both
// ErrUserNotFound and api.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
		}
		return nil, err
	}
	return user, nil
}

// Me returns the logged-in user
func (s *Service) Me(ctx context.Context) (*User, error) {
	return s.repo.Me(ctx)
}

// Signup creates a new account
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	return s.repo.Signup(ctx, req)
}

// DisplayName resolves the name shown for a plant owner
func (s *Service) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.DisplayName(), nil
}
