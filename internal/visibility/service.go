package visibility

import (
	"context"
	"log/slog"

	"github.com/cyderes/trending-topics-service/internal/metrics"
	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/storage"
)

// Service hides and restores trends
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewService creates a new visibility service
func NewService(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With("component", "visibility"),
	}
}

// SetHidden moves a trend to the requested state. Asking for the state the
// trend is already in returns it unchanged without writing.
func (s *Service) SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error) {
	current, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsHidden == hidden {
		return current, nil
	}

	updated, err := s.storage.SetHidden(ctx, id, hidden)
	if err != nil {
		return nil, err
	}

	metrics.RecordVisibilityChange(hidden)
	s.logger.Info("trend visibility changed", "id", id, "is_hidden", hidden)

	return updated, nil
}
