package cache

import (
	"context"
	"testing"
	"time"

	"pawsit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRatingCache(t *testing.T) {
	c := NewMemoryRatingCache()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		stats := &models.RatingStats{SitterID: 1, AverageRating: 4.2, ReviewCount: 5}
		require.NoError(t, c.SetRatingStats(ctx, stats, time.Minute))

		got, err := c.GetRatingStats(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 4.2, got.AverageRating)
	})

	t.Run("MissReturnsNil", func(t *testing.T) {
		got, err := c.GetRatingStats(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		stats := &models.RatingStats{SitterID: 2, AverageRating: 3.5, ReviewCount: 2}
		require.NoError(t, c.SetRatingStats(ctx, stats, -time.Second))

		got, err := c.GetRatingStats(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Invalidate", func(t *testing.T) {
		stats := &models.RatingStats{SitterID: 3, AverageRating: 5, ReviewCount: 1}
		require.NoError(t, c.SetRatingStats(ctx, stats, time.Minute))
		require.NoError(t, c.InvalidateRatingStats(ctx, 3))

		got, err := c.GetRatingStats(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			allowed, err := c.CheckRateLimit(ctx, 10, 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := c.CheckRateLimit(ctx, 10, 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
