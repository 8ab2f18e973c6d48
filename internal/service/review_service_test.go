package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"pawsit/internal/cache"
	"pawsit/internal/database"
	"pawsit/internal/events"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewService(t *testing.T, db *database.DB) *ReviewService {
	t.Helper()
	logger := zerolog.Nop()
	return NewReviewService(db, cache.NewMemoryRatingCache(), events.NewEventBus(), &logger)
}

func seedCompletedBooking(t *testing.T, db *database.DB, ownerID, sitterID int64, start time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		OwnerID:   ownerID,
		SitterID:  sitterID,
		ServiceID: 1,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
		TotalCost: 150,
		Status:    models.StatusCompleted,
	}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestCreateReview(t *testing.T) {
	db := newTestStore(t)
	svc := newReviewService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := seedCompletedBooking(t, db, owner.ID, sitter.ID, futureDay(1))

	review, err := svc.CreateReview(ctx, booking.ID, 5, "  Wonderful care for our dog  ")
	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, owner.ID, review.OwnerID)
	assert.Equal(t, sitter.ID, review.SitterID)
	assert.Equal(t, "Wonderful care for our dog", review.Comment)

	// One review per booking.
	_, err = svc.CreateReview(ctx, booking.ID, 4, "second try")
	assert.ErrorIs(t, err, ErrDuplicateReview)
}

func TestCreateReviewRequiresCompletedBooking(t *testing.T) {
	db := newTestStore(t)
	svc := newReviewService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	pending := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(3))
	pending.Status = models.StatusPending
	require.NoError(t, db.CreateBooking(ctx, pending))

	_, err := svc.CreateReview(ctx, pending.ID, 5, "too early")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = svc.CreateReview(ctx, 9999, 5, "no such booking")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReviewValidation(t *testing.T) {
	db := newTestStore(t)
	svc := newReviewService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := seedCompletedBooking(t, db, owner.ID, sitter.ID, futureDay(1))

	_, err := svc.CreateReview(ctx, booking.ID, 0, "rating too low")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateReview(ctx, booking.ID, 6, "rating too high")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateReview(ctx, booking.ID, 5, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateReview(ctx, booking.ID, 5, strings.Repeat("x", models.MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetRatingStats(t *testing.T) {
	db := newTestStore(t)
	svc := newReviewService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	// No reviews yet: zero average, zero count.
	stats, err := svc.GetRatingStats(ctx, sitter.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), stats.AverageRating)
	assert.Equal(t, 0, stats.ReviewCount)

	// Ratings [5,4,5]: the mean 4.666... must round to one decimal.
	for i, rating := range []int{5, 4, 5} {
		booking := seedCompletedBooking(t, db, owner.ID, sitter.ID, futureDay(i*3+1))
		_, err = svc.CreateReview(ctx, booking.ID, rating, "review text")
		require.NoError(t, err)
	}

	stats, err = svc.GetRatingStats(ctx, sitter.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.7, stats.AverageRating)
	assert.Equal(t, 3, stats.ReviewCount)
}

func TestGetReviewsForSitterPagination(t *testing.T) {
	db := newTestStore(t)
	svc := newReviewService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		booking := seedCompletedBooking(t, db, owner.ID, sitter.ID, futureDay(i*3+1))
		_, err := svc.CreateReview(ctx, booking.ID, 5, "great sitter")
		require.NoError(t, err)
	}

	// Out-of-range paging falls back to defaults.
	reviews, err := svc.GetReviewsForSitter(ctx, sitter.ID, -5, 0)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)

	reviews, err = svc.GetReviewsForSitter(ctx, sitter.ID, 0, models.MaxReviewPageSize+1)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)

	reviews, err = svc.GetReviewsForSitter(ctx, sitter.ID, 2, 10)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestDeleteReview(t *testing.T) {
	db := newTestStore(t)
	svc := newReviewService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := seedCompletedBooking(t, db, owner.ID, sitter.ID, futureDay(1))
	review, err := svc.CreateReview(ctx, booking.ID, 3, "okay experience")
	require.NoError(t, err)

	deleted, err := svc.DeleteReview(ctx, review.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Deleting the same review again is not an error.
	deleted, err = svc.DeleteReview(ctx, review.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Aggregate drops back to zero after invalidation.
	stats, err := svc.GetRatingStats(ctx, sitter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ReviewCount)
}
