package visibility

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/storage/storagetest"
)

func newTestService(store *storagetest.MockStorage) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_SetHidden_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		current bool
		target  bool
		writes  bool
	}{
		{name: "hide visible", current: false, target: true, writes: true},
		{name: "restore hidden", current: true, target: false, writes: true},
		{name: "hide hidden", current: true, target: true, writes: false},
		{name: "restore visible", current: false, target: false, writes: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStorage := new(storagetest.MockStorage)
			mockStorage.On("GetByID", mock.Anything, "t1").
				Return(&models.Trend{ID: "t1", Title: "one", IsHidden: tt.current}, nil)
			if tt.writes {
				mockStorage.On("SetHidden", mock.Anything, "t1", tt.target).
					Return(&models.Trend{ID: "t1", Title: "one", IsHidden: tt.target}, nil)
			}

			trend, err := newTestService(mockStorage).SetHidden(context.Background(), "t1", tt.target)
			require.NoError(t, err)

			assert.Equal(t, tt.target, trend.IsHidden)
			assert.Equal(t, "one", trend.Title)
			if !tt.writes {
				mockStorage.AssertNotCalled(t, "SetHidden", mock.Anything, mock.Anything, mock.Anything)
			}
			mockStorage.AssertExpectations(t)
		})
	}
}

func TestService_SetHidden_NotFound(t *testing.T) {
	mockStorage := new(storagetest.MockStorage)
	mockStorage.On("GetByID", mock.Anything, "missing").Return(nil, models.ErrNotFound)

	trend, err := newTestService(mockStorage).SetHidden(context.Background(), "missing", true)

	assert.Nil(t, trend)
	assert.ErrorIs(t, err, models.ErrNotFound)
	mockStorage.AssertNotCalled(t, "SetHidden", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetHidden_DeletedBetweenReadAndWrite(t *testing.T) {
	mockStorage := new(storagetest.MockStorage)
	mockStorage.On("GetByID", mock.Anything, "t1").Return(&models.Trend{ID: "t1"}, nil)
	mockStorage.On("SetHidden", mock.Anything, "t1", true).Return(nil, models.ErrNotFound)

	_, err := newTestService(mockStorage).SetHidden(context.Background(), "t1", true)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
