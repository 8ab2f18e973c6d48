package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/models"
)

const bookingColumns = `id, owner_id, sitter_id, service_id, pet_ids, start_date, end_date,
       total_cost, status, status_reason, created_at, accepted_at, completed_at, cancelled_at, version`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var petIDs string
	var acceptedAt, completedAt, cancelledAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.SitterID, &b.ServiceID, &petIDs, &b.StartDate, &b.EndDate,
		&b.TotalCost, &b.Status, &b.StatusReason, &b.CreatedAt,
		&acceptedAt, &completedAt, &cancelledAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.PetIDs = decodeIDs(petIDs)
	if acceptedAt.Valid {
		b.AcceptedAt = &acceptedAt.Time
	}
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	return &b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
                owner_id, sitter_id, service_id, pet_ids, start_date, end_date,
                total_cost, status, status_reason, created_at, version
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.OwnerID, booking.SitterID, booking.ServiceID, encodeIDs(booking.PetIDs),
		booking.StartDate, booking.EndDate, booking.TotalCost,
		booking.Status, booking.StatusReason, now, 1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) GetBookingsBySitter(ctx context.Context, sitterID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE sitter_id = ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, sitterID)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE owner_id = ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, ownerID)
}

// GetAcceptedBookingsForSitter feeds the conflict check: only accepted
// bookings block a sitter's calendar.
func (db *DB) GetAcceptedBookingsForSitter(ctx context.Context, sitterID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE sitter_id = ? AND status = ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, sitterID, models.StatusAccepted)
}

func (db *DB) GetPendingBookingsForSitter(ctx context.Context, sitterID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE sitter_id = ? AND status = ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, sitterID, models.StatusPending)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateBookingStatusWithVersion persists the status fields of a booking
// guarded by its version. The booking's Version is incremented on success.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, booking *models.Booking) error {
	query := `UPDATE bookings SET
                status = ?, status_reason = ?, accepted_at = ?, completed_at = ?, cancelled_at = ?,
                version = version + 1
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query,
		booking.Status, booking.StatusReason,
		nullableTime(booking.AcceptedAt), nullableTime(booking.CompletedAt), nullableTime(booking.CancelledAt),
		booking.ID, booking.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrConcurrentModification
	}
	booking.Version++
	return nil
}

// AcceptBookingAndBlockDates transitions the booking and marks every
// availability row overlapping its interval unavailable, in one
// transaction. A lost version race returns ErrConcurrentModification and
// leaves the ledger untouched.
func (db *DB) AcceptBookingAndBlockDates(ctx context.Context, booking *models.Booking) error {
	return db.transitionWithLedger(ctx, booking, false)
}

// CancelBookingAndRestoreDates transitions the booking and, when restore
// is set, reopens the overlapping availability rows in the same
// transaction.
func (db *DB) CancelBookingAndRestoreDates(ctx context.Context, booking *models.Booking, restore bool) error {
	if !restore {
		return db.UpdateBookingStatusWithVersion(ctx, booking)
	}
	return db.transitionWithLedger(ctx, booking, true)
}

func (db *DB) transitionWithLedger(ctx context.Context, booking *models.Booking, available bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET
            status = ?, status_reason = ?, accepted_at = ?, completed_at = ?, cancelled_at = ?,
            version = version + 1
         WHERE id = ? AND version = ?`,
		booking.Status, booking.StatusReason,
		nullableTime(booking.AcceptedAt), nullableTime(booking.CompletedAt), nullableTime(booking.CancelledAt),
		booking.ID, booking.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking in tx: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrConcurrentModification
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE availability SET is_available = ?
         WHERE sitter_id = ? AND start_date <= ? AND end_date >= ?`,
		available, booking.SitterID, booking.EndDate, booking.StartDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transition: %w", err)
	}
	booking.Version++
	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBookingsByDateRange returns bookings whose interval overlaps
// [start, end], for reporting and export.
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE start_date <= ? AND end_date >= ? ORDER BY start_date ASC`
	return db.queryBookings(ctx, query, end, start)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
