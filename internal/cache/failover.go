package cache

import (
	"context"
	"sync/atomic"
	"time"

	"pawsit/internal/domain"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

// FailoverRatingCache serves from the primary cache until it errors, then
// switches to the fallback and probes the primary again after a minute.
type FailoverRatingCache struct {
	primary   domain.RatingCache
	fallback  domain.RatingCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverRatingCache(primary, fallback domain.RatingCache, logger *zerolog.Logger) *FailoverRatingCache {
	return &FailoverRatingCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRatingCache) GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error) {
	if !r.isDown.Load() {
		stats, err := r.primary.GetRatingStats(ctx, sitterID)
		if err == nil {
			return stats, nil
		}
		r.markDown(err)
	}

	// Пробуем восстановиться через минуту
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		stats, err := r.primary.GetRatingStats(ctx, sitterID)
		if err == nil {
			r.isDown.Store(false)
			return stats, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetRatingStats(ctx, sitterID)
}

func (r *FailoverRatingCache) SetRatingStats(ctx context.Context, stats *models.RatingStats, ttl time.Duration) error {
	if !r.isDown.Load() {
		err := r.primary.SetRatingStats(ctx, stats, ttl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetRatingStats(ctx, stats, ttl)
}

func (r *FailoverRatingCache) InvalidateRatingStats(ctx context.Context, sitterID int64) error {
	// Invalidation goes to both sides so a recovered primary cannot serve
	// stale aggregates.
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.InvalidateRatingStats(ctx, sitterID)
		if primaryErr != nil {
			r.markDown(primaryErr)
		}
	}

	if err := r.fallback.InvalidateRatingStats(ctx, sitterID); err != nil {
		return err
	}
	return primaryErr
}

func (r *FailoverRatingCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}

func (r *FailoverRatingCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary rating cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}
