package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/events"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	store    domain.Store
	cache    domain.RatingCache
	eventBus domain.EventPublisher
	cacheTTL time.Duration
	logger   *zerolog.Logger
}

func NewReviewService(store domain.Store, cache domain.RatingCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		cacheTTL: models.RatingCacheTTL * time.Second,
		logger:   logger,
	}
}

// CreateReview records a review for a completed booking. One review per
// booking; owner and sitter ids come from the booking, never the caller.
func (s *ReviewService) CreateReview(ctx context.Context, bookingID int64, rating int, comment string) (*models.Review, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusCompleted {
		return nil, ErrInvalidStateTransition
	}

	if _, err := s.store.GetReviewByBooking(ctx, bookingID); err == nil {
		return nil, ErrDuplicateReview
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" || len(comment) > models.MaxMessageLength {
		return nil, fmt.Errorf("%w: comment must be 1-%d characters", ErrValidation, models.MaxMessageLength)
	}

	review := &models.Review{
		BookingID: bookingID,
		OwnerID:   booking.OwnerID,
		SitterID:  booking.SitterID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	s.invalidate(ctx, booking.SitterID)

	if s.eventBus != nil {
		payload := events.ReviewEventPayload{
			ReviewID:  review.ID,
			BookingID: bookingID,
			SitterID:  booking.SitterID,
			Rating:    rating,
		}
		if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
			s.logger.Error().Err(err).Str("review_id", review.ID).Msg("publish event error")
		}
	}
	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*models.Review, error) {
	review, err := s.store.GetReview(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}
	return review, err
}

// GetReviewsForSitter pages a sitter's reviews. skip below zero becomes
// zero; take outside (0, 50] becomes 10.
func (s *ReviewService) GetReviewsForSitter(ctx context.Context, sitterID int64, skip, take int) ([]*models.Review, error) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 || take > models.MaxReviewPageSize {
		take = models.DefaultReviewPageSize
	}
	return s.store.GetReviewsBySitter(ctx, sitterID, skip, take)
}

// GetRatingStats reads through the cache; on a miss the aggregate is
// recomputed from the store and cached.
func (s *ReviewService) GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error) {
	if s.cache != nil {
		if stats, err := s.cache.GetRatingStats(ctx, sitterID); err == nil && stats != nil {
			return stats, nil
		}
	}

	avg, err := s.store.AverageRatingBySitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.CountReviewsBySitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}

	stats := &models.RatingStats{
		SitterID:      sitterID,
		AverageRating: avg,
		ReviewCount:   int(count),
	}
	if s.cache != nil {
		if err := s.cache.SetRatingStats(ctx, stats, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Int64("sitter_id", sitterID).Msg("rating cache set failed")
		}
	}
	return stats, nil
}

// DeleteReview removes a review. The boolean distinguishes "deleted" from
// "was not there"; neither is an error.
func (s *ReviewService) DeleteReview(ctx context.Context, id string) (bool, error) {
	review, err := s.store.GetReview(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.store.DeleteReview(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	s.invalidate(ctx, review.SitterID)
	return true, nil
}

func (s *ReviewService) invalidate(ctx context.Context, sitterID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRatingStats(ctx, sitterID); err != nil {
		s.logger.Warn().Err(err).Int64("sitter_id", sitterID).Msg("rating cache invalidate failed")
	}
}
