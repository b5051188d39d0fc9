package plant

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/notification"
)

// Common errors
var (
	ErrNameRequired = errors.New("plant name is required")
	ErrInvalidImage = errors.New("uploaded file is not an image")
)

// Service handles plant business logic
type Service struct {
	repo   *Repository
	logger *slog.Logger
}

// NewService creates a new plant service with repository dependency injected
func NewService(repo *Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger.With("component", "plant")}
}

// Create uploads a new listing and, on success, reloads the caller's own
// plants into cat. cat may be nil.
func (s *Service) Create(ctx context.Context, cat *Catalog, req *CreatePlantRequest) (*Plant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		notification.Emit(ctx, notification.Error("Error creating plant", "Please give the plant a name."))
		return nil, ErrNameRequired
	}

	if req.Image != nil {
		if err := sniffImage(req.Image); err != nil {
			notification.Emit(ctx, notification.Error("Invalid file type", "Please upload an image file."))
			return nil, err
		}
	}

	p, err := s.repo.Create(ctx, req)
	if err != nil {
		notification.Emit(ctx, createFailure(err, req.Image != nil))
		return nil, err
	}

	notification.Emit(ctx, notification.Success(
		"Plant created",
		`Plant "`+p.Name+`" has been successfully created`,
	))

	if cat != nil {
		s.reload(ctx, cat)
	}
	return p, nil
}

// Delete removes a listing and drops it from cat. cat may be nil.
func (s *Service) Delete(ctx context.Context, cat *Catalog, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		notification.EmitError(ctx, err, "Error deleting plant")
		return err
	}

	notification.Emit(ctx, notification.Success("Plant deleted", "The plant has been deleted."))
	if cat != nil {
		cat.Remove(id)
	}
	return nil
}

// ListOwn fetches the caller's plants and merges them into cat.
func (s *Service) ListOwn(ctx context.Context, cat *Catalog) ([]Plant, error) {
	plants, err := s.repo.ListOwn(ctx)
	if err != nil {
		notification.EmitError(ctx, err, "Error fetching your plants")
		return nil, err
	}
	if cat == nil {
		return plants, nil
	}
	return cat.Merge(plants), nil
}

// GetByID retrieves a single plant
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Plant, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		notification.EmitError(ctx, err, "Error fetching plant")
		return nil, err
	}
	return p, nil
}

func (s *Service) reload(ctx context.Context, cat *Catalog) {
	plants, err := s.repo.ListOwn(ctx)
	if err != nil {
		s.logger.Warn("failed to reload own plants", "error", err)
		return
	}
	cat.Merge(plants)
}

func createFailure(err error, withImage bool) notification.Notification {
	apiErr := api.AsError(err)
	switch {
	case apiErr.Kind == api.KindUnauthorized:
		return notification.Error("Unauthorized", "You are not logged in")
	case apiErr.Kind == api.KindOther && apiErr.Status == http.StatusInternalServerError && withImage:
		return notification.Error(
			"Image upload not configured",
			"The image upload has not been configured for this web app. Please remove the image from the ad",
		)
	default:
		return notification.FromError(err, "Error creating plant")
	}
}

// sniffImage checks the upload's leading bytes and rewinds the reader so
// the full content is still sent.
func sniffImage(img *Image) error {
	br := bufio.NewReaderSize(img.Content, 512)
	head, err := br.Peek(512)
	if err != nil && len(head) == 0 {
		return ErrInvalidImage
	}
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return ErrInvalidImage
	}
	img.Content = br
	return nil
}
