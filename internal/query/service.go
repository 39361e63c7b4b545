package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/storage"
)

// Params are the optional filters of a listing request. A nil IsHidden
// selects visible trends only unless IncludeAll is set.
type Params struct {
	Category   *string
	IsHidden   *bool
	IncludeAll bool
	Limit      *int
	Offset     *int
}

// Page is one page of trends plus the total number of matches
type Page struct {
	Trends []models.Trend `json:"trends"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Service reads trends from storage
type Service struct {
	config  config.QueryConfig
	storage storage.Storage
	logger  *slog.Logger
}

// NewService creates a new query service
func NewService(cfg config.QueryConfig, store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		config:  cfg,
		storage: store,
		logger:  logger.With("component", "query"),
	}
}

// List returns trends newest first, ties broken by id
func (s *Service) List(ctx context.Context, params Params) (*Page, error) {
	filter := s.filter(params)

	trends, total, err := s.storage.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}
	if trends == nil {
		trends = []models.Trend{}
	}

	s.logger.Debug("listed trends", "category", filter.Category, "returned", len(trends), "total", total)

	return &Page{
		Trends: trends,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Get returns a single trend by id
func (s *Service) Get(ctx context.Context, id string) (*models.Trend, error) {
	return s.storage.GetByID(ctx, id)
}

func (s *Service) filter(params Params) storage.Filter {
	filter := storage.Filter{
		Limit: s.config.DefaultLimit,
	}

	if params.Category != nil {
		filter.Category = models.NormalizeCategory(*params.Category)
	}

	switch {
	case params.IncludeAll:
	case params.IsHidden != nil:
		hidden := *params.IsHidden
		filter.Hidden = &hidden
	default:
		visible := false
		filter.Hidden = &visible
	}

	if params.Limit != nil && *params.Limit > 0 {
		filter.Limit = *params.Limit
	}
	if s.config.MaxLimit > 0 && filter.Limit > s.config.MaxLimit {
		filter.Limit = s.config.MaxLimit
	}

	if params.Offset != nil && *params.Offset > 0 {
		filter.Offset = *params.Offset
	}

	return filter
}
