package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenCache fails every call, standing in for a dead redis.
type brokenCache struct{}

var errBroken = errors.New("connection refused")

func (brokenCache) GetRatingStats(context.Context, int64) (*models.RatingStats, error) {
	return nil, errBroken
}

func (brokenCache) SetRatingStats(context.Context, *models.RatingStats, time.Duration) error {
	return errBroken
}

func (brokenCache) InvalidateRatingStats(context.Context, int64) error {
	return errBroken
}

func (brokenCache) CheckRateLimit(context.Context, int64, int, time.Duration) (bool, error) {
	return false, errBroken
}

func TestFailoverUsesHealthyPrimary(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryRatingCache()
	fallback := NewMemoryRatingCache()
	c := NewFailoverRatingCache(primary, fallback, &logger)
	ctx := context.Background()

	stats := &models.RatingStats{SitterID: 1, AverageRating: 4, ReviewCount: 3}
	require.NoError(t, c.SetRatingStats(ctx, stats, time.Minute))

	// The write landed on the primary, not the fallback.
	got, err := primary.GetRatingStats(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = fallback.GetRatingStats(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailoverFallsBackOnError(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryRatingCache()
	c := NewFailoverRatingCache(brokenCache{}, fallback, &logger)
	ctx := context.Background()

	stats := &models.RatingStats{SitterID: 2, AverageRating: 5, ReviewCount: 1}
	require.NoError(t, c.SetRatingStats(ctx, stats, time.Minute))

	got, err := c.GetRatingStats(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, float64(5), got.AverageRating)

	allowed, err := c.CheckRateLimit(ctx, 1, 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFailoverInvalidatesBothSides(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryRatingCache()
	fallback := NewMemoryRatingCache()
	c := NewFailoverRatingCache(primary, fallback, &logger)
	ctx := context.Background()

	stats := &models.RatingStats{SitterID: 3, AverageRating: 4, ReviewCount: 2}
	require.NoError(t, primary.SetRatingStats(ctx, stats, time.Minute))
	require.NoError(t, fallback.SetRatingStats(ctx, stats, time.Minute))

	require.NoError(t, c.InvalidateRatingStats(ctx, 3))

	got, err := primary.GetRatingStats(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = fallback.GetRatingStats(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}
