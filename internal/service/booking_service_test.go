package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/events"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newBookingService(t *testing.T, db *database.DB) *BookingService {
	t.Helper()
	logger := zerolog.Nop()
	return NewBookingService(db, events.NewEventBus(), nil, &logger)
}

func seedTestSitter(t *testing.T, db *database.DB) *models.PetSitter {
	t.Helper()
	sitter := &models.PetSitter{Email: "sitter@example.com", Name: "Sitter", ZipCode: "94114"}
	require.NoError(t, db.CreatePetSitter(context.Background(), sitter))
	return sitter
}

func seedTestOwner(t *testing.T, db *database.DB) *models.PetOwner {
	t.Helper()
	owner := &models.PetOwner{Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, db.CreatePetOwner(context.Background(), owner))
	return owner
}

func futureDay(d int) time.Time {
	return time.Date(2026, 12, d, 0, 0, 0, 0, time.UTC)
}

func makeBooking(ownerID, sitterID int64, start, end time.Time) *models.Booking {
	return &models.Booking{
		OwnerID:   ownerID,
		SitterID:  sitterID,
		ServiceID: 1,
		StartDate: start,
		EndDate:   end,
		TotalCost: 200,
	}
}

func TestCreateBooking(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, svc.CreateBooking(ctx, booking))

	assert.NotZero(t, booking.ID)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Empty(t, booking.StatusReason)
}

func TestCreateBookingInvalidDates(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	// End before start.
	err := svc.CreateBooking(ctx, makeBooking(owner.ID, sitter.ID, futureDay(5), futureDay(1)))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	// Start in the past.
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	err = svc.CreateBooking(ctx, makeBooking(owner.ID, sitter.ID, past, past.AddDate(0, 0, 2)))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCreateBookingUnknownSitter(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	owner := seedTestOwner(t, db)

	err := svc.CreateBooking(context.Background(), makeBooking(owner.ID, 9999, futureDay(1), futureDay(3)))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingConflictsWithAccepted(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	first := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, svc.CreateBooking(ctx, first))
	_, err := svc.AcceptBooking(ctx, first.ID)
	require.NoError(t, err)

	// Touching endpoint conflicts: boundaries are inclusive.
	err = svc.CreateBooking(ctx, makeBooking(owner.ID, sitter.ID, futureDay(5), futureDay(8)))
	assert.ErrorIs(t, err, ErrSchedulingConflict)

	// A disjoint window is fine.
	err = svc.CreateBooking(ctx, makeBooking(owner.ID, sitter.ID, futureDay(6), futureDay(8)))
	assert.NoError(t, err)
}

func TestCreateBookingBlockedLedger(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateAvailability(ctx, &models.Availability{
		SitterID: sitter.ID, StartDate: futureDay(1), EndDate: futureDay(10), IsAvailable: false,
	}))

	err := svc.CreateBooking(ctx, makeBooking(owner.ID, sitter.ID, futureDay(3), futureDay(5)))
	assert.ErrorIs(t, err, ErrSchedulingConflict)

	// Sitter without a published calendar stays bookable.
	err = svc.CreateBooking(ctx, makeBooking(owner.ID, sitter.ID, futureDay(15), futureDay(17)))
	assert.NoError(t, err)
}

func TestAcceptBooking(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, svc.CreateBooking(ctx, booking))

	accepted, err := svc.AcceptBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	assert.Equal(t, "Accepted by sitter", accepted.StatusReason)
	require.NotNil(t, accepted.AcceptedAt)

	// Accepting twice is not a valid transition.
	_, err = svc.AcceptBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestAcceptBookingConflictRecheck(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	first := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, svc.CreateBooking(ctx, first))
	second := makeBooking(owner.ID, sitter.ID, futureDay(4), futureDay(8))
	require.NoError(t, svc.CreateBooking(ctx, second))

	_, err := svc.AcceptBooking(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.AcceptBooking(ctx, second.ID)
	assert.ErrorIs(t, err, ErrSchedulingConflict)
}

func TestDeclineBooking(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, svc.CreateBooking(ctx, booking))

	_, err := svc.DeclineBooking(ctx, booking.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	declined, err := svc.DeclineBooking(ctx, booking.ID, "Fully booked that week")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, declined.Status)
	assert.Equal(t, "Fully booked that week", declined.StatusReason)
	assert.NotNil(t, declined.CancelledAt)
}

func TestCancelBookingRefundPolicy(t *testing.T) {
	db := newTestStore(t)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()
	start := futureDay(10)

	t.Run("FullRefundAtExactly24Hours", func(t *testing.T) {
		svc := newBookingService(t, db)
		booking := makeBooking(owner.ID, sitter.ID, start, start.AddDate(0, 0, 2))
		require.NoError(t, svc.CreateBooking(ctx, booking))

		svc.SetNowFunc(func() time.Time { return start.Add(-24 * time.Hour) })
		cancelled, refund, err := svc.CancelBooking(ctx, booking.ID, "")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
		assert.Equal(t, "Cancelled by user", cancelled.StatusReason)
		assert.Equal(t, 100, refund.Percentage)
		assert.Equal(t, booking.TotalCost, refund.Amount)
		assert.Equal(t, "Booking cancelled with full refund", refund.Message)
	})

	t.Run("NoRefundInside24Hours", func(t *testing.T) {
		svc := newBookingService(t, db)
		booking := makeBooking(owner.ID, sitter.ID, futureDay(20), futureDay(22))
		require.NoError(t, svc.CreateBooking(ctx, booking))

		svc.SetNowFunc(func() time.Time { return futureDay(20).Add(-23*time.Hour - 59*time.Minute) })
		_, refund, err := svc.CancelBooking(ctx, booking.ID, "change of plans")
		require.NoError(t, err)
		assert.Equal(t, 0, refund.Percentage)
		assert.Equal(t, float64(0), refund.Amount)
		assert.Equal(t, "Booking cancelled within 24 hours - no refund per policy", refund.Message)
	})
}

func TestCancelBookingTerminalStates(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(3))
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, _, err := svc.CancelBooking(ctx, booking.ID, "")
	require.NoError(t, err)

	// Cancelling a cancelled booking.
	_, _, err2 := svc.CancelBooking(ctx, booking.ID, "")
	assert.ErrorIs(t, err2, ErrAlreadyTerminal)

	// Cancelling a completed booking.
	completed := makeBooking(owner.ID, sitter.ID, futureDay(5), futureDay(7))
	require.NoError(t, svc.CreateBooking(ctx, completed))
	_, err = svc.AcceptBooking(ctx, completed.ID)
	require.NoError(t, err)
	_, err = svc.CompleteBooking(ctx, completed.ID)
	require.NoError(t, err)

	_, _, err = svc.CancelBooking(ctx, completed.ID, "")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	// Cancelling a declined booking.
	declined := makeBooking(owner.ID, sitter.ID, futureDay(10), futureDay(12))
	require.NoError(t, svc.CreateBooking(ctx, declined))
	_, err = svc.DeclineBooking(ctx, declined.ID, "not available")
	require.NoError(t, err)

	_, _, err = svc.CancelBooking(ctx, declined.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestCancelAcceptedRestoresLedger(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	require.NoError(t, db.CreateAvailability(ctx, &models.Availability{
		SitterID: sitter.ID, StartDate: futureDay(1), EndDate: futureDay(5), IsAvailable: true,
	}))

	booking := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, svc.CreateBooking(ctx, booking))
	_, err := svc.AcceptBooking(ctx, booking.ID)
	require.NoError(t, err)

	entries, err := db.GetAvailabilityOverlapping(ctx, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsAvailable)

	_, _, err = svc.CancelBooking(ctx, booking.ID, "")
	require.NoError(t, err)

	entries, err = db.GetAvailabilityOverlapping(ctx, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsAvailable)
}

func TestCompleteBookingRequiresAccepted(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	booking := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(3))
	require.NoError(t, svc.CreateBooking(ctx, booking))

	_, err := svc.CompleteBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = svc.AcceptBooking(ctx, booking.ID)
	require.NoError(t, err)

	completed, err := svc.CompleteBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
}

func TestGetPendingBookings(t *testing.T) {
	db := newTestStore(t)
	svc := newBookingService(t, db)
	sitter := seedTestSitter(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	first := makeBooking(owner.ID, sitter.ID, futureDay(1), futureDay(3))
	require.NoError(t, svc.CreateBooking(ctx, first))
	second := makeBooking(owner.ID, sitter.ID, futureDay(10), futureDay(12))
	require.NoError(t, svc.CreateBooking(ctx, second))
	_, err := svc.AcceptBooking(ctx, first.ID)
	require.NoError(t, err)

	pending, err := svc.GetPendingBookings(ctx, sitter.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}
