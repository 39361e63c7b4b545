package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/models"
)

// Storage interface defines the contract for trend persistence
type Storage interface {
	// InsertMany persists candidates, assigning ids and creation timestamps.
	InsertMany(ctx context.Context, candidates []models.CandidateTrend) ([]models.Trend, error)
	// List returns one page of trends and the number of matches before paging.
	List(ctx context.Context, filter Filter) ([]models.Trend, int, error)
	GetByID(ctx context.Context, id string) (*models.Trend, error)
	SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error)
	Ping(ctx context.Context) error
	Close() error
}

// Filter selects trends for List. An empty Category matches all categories
// and a nil Hidden matches both visible and hidden trends.
type Filter struct {
	Category string
	Hidden   *bool
	Limit    int
	Offset   int
}

// PartialInsertError reports a batch that was only partly persisted
type PartialInsertError struct {
	Inserted []models.Trend
	Failed   int
	Err      error
}

func (e *PartialInsertError) Error() string {
	return fmt.Sprintf("partial insert: %d stored, %d failed: %v", len(e.Inserted), e.Failed, e.Err)
}

func (e *PartialInsertError) Unwrap() error {
	return e.Err
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	logger = logger.With("component", "storage", "type", cfg.Type)

	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStorage(ctx, cfg, logger)
	case "dynamodb":
		return NewDynamoDBStorage(cfg, logger)
	case "mongodb":
		return NewMongoDBStorage(ctx, cfg, logger)
	case "postgresql":
		return NewPostgreSQLStorage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// newTrends turns candidates into records with fresh ids. Every record of
// a batch shares one timestamp, truncated to millisecond precision so the
// value round-trips through every backend unchanged.
func newTrends(candidates []models.CandidateTrend) []models.Trend {
	now := time.Now().UTC().Truncate(time.Millisecond)
	trends := make([]models.Trend, len(candidates))

	for i, c := range candidates {
		trends[i] = models.Trend{
			ID:        uuid.NewString(),
			Title:     c.Title,
			Summary:   c.Summary,
			Category:  c.Category,
			Source:    c.Source,
			IsHidden:  false,
			CreatedAt: now,
		}
	}

	return trends
}

// sortTrends orders by creation time, newest first, ties by id
func sortTrends(trends []models.Trend) {
	sort.SliceStable(trends, func(i, j int) bool {
		if !trends[i].CreatedAt.Equal(trends[j].CreatedAt) {
			return trends[i].CreatedAt.After(trends[j].CreatedAt)
		}
		return trends[i].ID < trends[j].ID
	})
}

// paginate applies Filter.Offset and Filter.Limit to an ordered slice
func paginate(trends []models.Trend, limit, offset int) []models.Trend {
	if offset >= len(trends) {
		return []models.Trend{}
	}
	end := len(trends)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return trends[offset:end]
}

// matches reports whether t passes the category and visibility parts of f
func (f Filter) matches(t models.Trend) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Hidden != nil && t.IsHidden != *f.Hidden {
		return false
	}
	return true
}
