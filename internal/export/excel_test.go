package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportBookings(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		OwnerID:   1,
		SitterID:  2,
		ServiceID: 3,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
		TotalCost: 150,
		Status:    models.StatusAccepted,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))

	exporter := NewExporter(db, filepath.Join(dir, "exports"), &logger)
	path, err := exporter.ExportBookings(ctx, start.AddDate(0, 0, -1), start.AddDate(0, 0, 5))
	require.NoError(t, err)

	assert.Equal(t, "bookings_2026-10-31_to_2026-11-06.xlsx", filepath.Base(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportBookingsEmptyRange(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exporter := NewExporter(db, filepath.Join(dir, "exports"), &logger)
	path, err := exporter.ExportBookings(context.Background(),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
