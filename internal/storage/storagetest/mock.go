// Package storagetest provides a testify mock of storage.Storage.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/storage"
)

var _ storage.Storage = (*MockStorage)(nil)

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) InsertMany(ctx context.Context, candidates []models.CandidateTrend) ([]models.Trend, error) {
	args := m.Called(ctx, candidates)
	trends, _ := args.Get(0).([]models.Trend)
	return trends, args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, filter storage.Filter) ([]models.Trend, int, error) {
	args := m.Called(ctx, filter)
	trends, _ := args.Get(0).([]models.Trend)
	return trends, args.Int(1), args.Error(2)
}

func (m *MockStorage) GetByID(ctx context.Context, id string) (*models.Trend, error) {
	args := m.Called(ctx, id)
	trend, _ := args.Get(0).(*models.Trend)
	return trend, args.Error(1)
}

func (m *MockStorage) SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error) {
	args := m.Called(ctx, id, hidden)
	trend, _ := args.Get(0).(*models.Trend)
	return trend, args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}
