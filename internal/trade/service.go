package trade

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fkhayef/plantswap/internal/notification"
)

// Common errors
var (
	ErrSamePlant         = errors.New("a plant cannot be traded for itself")
	ErrInvalidTransition = errors.New("trade request cannot move to that state")
	ErrRequestNotFound   = errors.New("trade request not found")
	ErrInvalidScope      = errors.New("invalid trade request scope")
)

// Service runs the trade request lifecycle actions. Each action is one
// exchange with the API, reports exactly one notification and, on
// success, runs the caller's continuation.
type Service struct {
	repo   *Repository
	logger *slog.Logger
}

// NewService creates a new trade service with repository dependency injected
func NewService(repo *Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger.With("component", "trade")}
}

// Create offers key.Outgoing in exchange for key.Incoming.
func (s *Service) Create(ctx context.Context, key Key, message string, onSuccess func()) (*Record, error) {
	if key.Outgoing == key.Incoming {
		notification.Emit(ctx, notification.Error(notification.TitleSelfTrade, "A plant cannot be traded for itself"))
		return nil, ErrSamePlant
	}

	rec, err := s.repo.Create(ctx, key, message)
	if err != nil {
		notification.EmitError(ctx, err, "Error")
		return nil, err
	}

	s.succeed(ctx, notification.Success("Trade Request Created", "Your trade request has been successfully submitted"), onSuccess)
	return rec, nil
}

// Accept answers a received request positively.
func (s *Service) Accept(ctx context.Context, key Key, onSuccess func()) error {
	return s.act(ctx, s.repo.Accept, key,
		notification.Success("Request Accepted", "Trade request has been successfully accepted"), onSuccess)
}

// Decline answers a received request negatively.
func (s *Service) Decline(ctx context.Context, key Key, onSuccess func()) error {
	return s.act(ctx, s.repo.Reject, key,
		notification.Success("Request Declined", "Trade request has been successfully declined"), onSuccess)
}

// Delete removes a request the caller sent or received.
func (s *Service) Delete(ctx context.Context, key Key, onSuccess func()) error {
	return s.act(ctx, s.repo.Delete, key,
		notification.Success("Request Deleted", "Trade request has been successfully removed"), onSuccess)
}

// Get retrieves one request with its named status.
func (s *Service) Get(ctx context.Context, key Key) (*Record, error) {
	rec, err := s.repo.Get(ctx, key)
	if err != nil {
		notification.EmitError(ctx, err, "Error")
		return nil, err
	}
	return rec, nil
}

func (s *Service) act(ctx context.Context, call func(context.Context, Key) error, key Key, success notification.Notification, onSuccess func()) error {
	if err := call(ctx, key); err != nil {
		s.logger.Debug("trade action failed", "key", key.String(), "error", err)
		notification.EmitError(ctx, err, "Error")
		return err
	}
	s.succeed(ctx, success, onSuccess)
	return nil
}

func (s *Service) succeed(ctx context.Context, n notification.Notification, onSuccess func()) {
	notification.Emit(ctx, n)
	if onSuccess != nil {
		onSuccess()
	}
}
