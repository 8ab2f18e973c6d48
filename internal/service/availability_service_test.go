package service

import (
	"context"
	"testing"

	"pawsit/internal/database"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailabilityService(t *testing.T, db *database.DB) *AvailabilityService {
	t.Helper()
	logger := zerolog.Nop()
	return NewAvailabilityService(db, &logger)
}

func TestAvailabilityEntryCRUD(t *testing.T) {
	db := newTestStore(t)
	svc := newAvailabilityService(t, db)
	sitter := seedTestSitter(t, db)
	ctx := context.Background()

	entry := &models.Availability{
		SitterID:    sitter.ID,
		StartDate:   futureDay(1),
		EndDate:     futureDay(5),
		IsAvailable: true,
	}
	require.NoError(t, svc.CreateEntry(ctx, entry))
	assert.NotZero(t, entry.ID)

	entry.IsAvailable = false
	require.NoError(t, svc.UpdateEntry(ctx, entry))

	got, err := svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	require.NoError(t, svc.DeleteEntry(ctx, entry.ID))
	_, err = svc.GetEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEntryInvalidRange(t *testing.T) {
	db := newTestStore(t)
	svc := newAvailabilityService(t, db)
	sitter := seedTestSitter(t, db)
	ctx := context.Background()

	err := svc.CreateEntry(ctx, &models.Availability{
		SitterID:  sitter.ID,
		StartDate: futureDay(5),
		EndDate:   futureDay(1),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestUpdateSchedule(t *testing.T) {
	db := newTestStore(t)
	svc := newAvailabilityService(t, db)
	sitter := seedTestSitter(t, db)
	ctx := context.Background()

	existing := &models.Availability{
		SitterID: sitter.ID, StartDate: futureDay(1), EndDate: futureDay(3), IsAvailable: true,
	}
	require.NoError(t, svc.CreateEntry(ctx, existing))

	unknownID := int64(9999)
	applied, err := svc.UpdateSchedule(ctx, sitter.ID, []models.AvailabilityUpdate{
		{ID: &existing.ID, StartDate: futureDay(1), EndDate: futureDay(4), IsAvailable: false},
		{ID: &unknownID, StartDate: futureDay(10), EndDate: futureDay(12), IsAvailable: true},
		{StartDate: futureDay(20), EndDate: futureDay(25), IsAvailable: true},
	})
	require.NoError(t, err)
	// The unknown id is skipped; update plus insert are applied.
	require.Len(t, applied, 2)
	assert.Equal(t, existing.ID, applied[0].ID)
	assert.NotZero(t, applied[1].ID)

	schedule, err := svc.GetSchedule(ctx, sitter.ID)
	require.NoError(t, err)
	assert.Len(t, schedule, 2)
}

func TestUpdateScheduleUnknownSitter(t *testing.T) {
	db := newTestStore(t)
	svc := newAvailabilityService(t, db)

	_, err := svc.UpdateSchedule(context.Background(), 9999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateScheduleInvalidEntry(t *testing.T) {
	db := newTestStore(t)
	svc := newAvailabilityService(t, db)
	sitter := seedTestSitter(t, db)

	_, err := svc.UpdateSchedule(context.Background(), sitter.ID, []models.AvailabilityUpdate{
		{StartDate: futureDay(5), EndDate: futureDay(1)},
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestIsSitterAvailable(t *testing.T) {
	db := newTestStore(t)
	svc := newAvailabilityService(t, db)
	sitter := seedTestSitter(t, db)
	ctx := context.Background()

	// No ledger rows at all: the sitter stays bookable.
	available, err := svc.IsSitterAvailable(ctx, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, err)
	assert.True(t, available)

	require.NoError(t, svc.CreateEntry(ctx, &models.Availability{
		SitterID: sitter.ID, StartDate: futureDay(3), EndDate: futureDay(8), IsAvailable: false,
	}))

	available, err = svc.IsSitterAvailable(ctx, sitter.ID, futureDay(1), futureDay(5))
	require.NoError(t, err)
	assert.False(t, available)

	// Touching boundary still counts as overlap.
	available, err = svc.IsSitterAvailable(ctx, sitter.ID, futureDay(8), futureDay(10))
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.IsSitterAvailable(ctx, sitter.ID, futureDay(9), futureDay(10))
	require.NoError(t, err)
	assert.True(t, available)
}
