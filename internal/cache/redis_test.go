package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/models"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewRedisCache(context.Background(), config.CacheConfig{RedisAddr: mr.Addr()}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	trends := []models.CandidateTrend{
		{Title: "Short-form tutorials", Summary: "60s how-tos", Category: "Educational", Source: models.SourceLLM},
	}
	require.NoError(t, c.Set(ctx, "k1", trends, time.Minute))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, trends, got)

	assert.True(t, mr.Exists("trends:k1"))
	assert.Equal(t, time.Minute, mr.TTL("trends:k1"))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	got, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", []models.CandidateTrend{{Title: "A", Category: "News"}}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("trends:bad", "not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err = NewRedisCache(context.Background(), config.CacheConfig{RedisAddr: addr}, logger)
	assert.ErrorContains(t, err, "failed to connect to redis")
}
