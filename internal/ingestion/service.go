package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/metrics"
	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/storage"
)

// Service validates and persists batches of trend candidates
type Service struct {
	config  config.IngestionConfig
	storage storage.Storage
	logger  *slog.Logger
}

// BulkResult is the outcome of a BulkCreate call
type BulkResult struct {
	Count   int
	Created []models.Trend
	Failed  int
}

// NewService creates a new ingestion service
func NewService(cfg config.IngestionConfig, store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		config:  cfg,
		storage: store,
		logger:  logger.With("component", "ingestion"),
	}
}

// BulkCreate validates every candidate before inserting any of them. When
// the store persists only part of the batch the partial result is returned
// together with the *storage.PartialInsertError.
func (s *Service) BulkCreate(ctx context.Context, candidates []models.CandidateTrend) (*BulkResult, error) {
	if len(candidates) == 0 {
		metrics.RecordIngestFailure("validation")
		return nil, models.NewValidationError("trends", "must contain at least one item")
	}
	if s.config.MaxBatch > 0 && len(candidates) > s.config.MaxBatch {
		metrics.RecordIngestFailure("validation")
		return nil, models.NewValidationError("trends", fmt.Sprintf("must contain at most %d items", s.config.MaxBatch))
	}

	normalized, err := normalizeBatch(candidates)
	if err != nil {
		metrics.RecordIngestFailure("validation")
		return nil, err
	}

	created, err := s.storage.InsertMany(ctx, normalized)
	if err != nil {
		var partial *storage.PartialInsertError
		if errors.As(err, &partial) {
			metrics.RecordIngested(len(partial.Inserted))
			metrics.RecordIngestFailure("partial")
			s.logger.Error("bulk insert partially failed",
				"inserted", len(partial.Inserted), "failed", partial.Failed, "error", partial.Err)
			return &BulkResult{
				Count:   len(partial.Inserted),
				Created: partial.Inserted,
				Failed:  partial.Failed,
			}, err
		}

		metrics.RecordIngestFailure("storage")
		return nil, fmt.Errorf("failed to store trends: %w", err)
	}

	metrics.RecordIngested(len(created))
	s.logger.Info("ingested trends", "count", len(created))

	return &BulkResult{Count: len(created), Created: created}, nil
}

func normalizeBatch(candidates []models.CandidateTrend) ([]models.CandidateTrend, error) {
	out := make([]models.CandidateTrend, len(candidates))

	for i, c := range candidates {
		n, err := normalizeCandidate(c)
		if err != nil {
			err.Index = i
			return nil, err
		}
		out[i] = n
	}

	return out, nil
}

func normalizeCandidate(c models.CandidateTrend) (models.CandidateTrend, *models.ValidationError) {
	c.Title = strings.TrimSpace(c.Title)
	c.Summary = strings.TrimSpace(c.Summary)
	c.Category = models.NormalizeCategory(c.Category)
	c.Source = models.Source(strings.ToLower(strings.TrimSpace(string(c.Source))))

	if c.Title == "" {
		return c, models.NewValidationError("title", "is required")
	}
	if c.Category == "" {
		return c, models.NewValidationError("category", "is required")
	}
	if c.Source == "" {
		c.Source = models.SourceManual
	}
	if !c.Source.Valid() {
		return c, models.NewValidationError("source", "must be one of llm, fallback, manual")
	}

	return c, nil
}
