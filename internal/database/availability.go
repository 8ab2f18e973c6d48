package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/models"
)

func (db *DB) CreateAvailability(ctx context.Context, a *models.Availability) error {
	query := `INSERT INTO availability (sitter_id, start_date, end_date, is_available)
              VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, a.SitterID, a.StartDate, a.EndDate, a.IsAvailable)
	if err != nil {
		return fmt.Errorf("failed to create availability: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

func (db *DB) GetAvailability(ctx context.Context, id int64) (*models.Availability, error) {
	query := `SELECT id, sitter_id, start_date, end_date, is_available
              FROM availability WHERE id = ?`

	var a models.Availability
	err := db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.SitterID, &a.StartDate, &a.EndDate, &a.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return &a, nil
}

func (db *DB) GetAvailabilityForSitter(ctx context.Context, sitterID int64) ([]*models.Availability, error) {
	query := `SELECT id, sitter_id, start_date, end_date, is_available
              FROM availability WHERE sitter_id = ? ORDER BY start_date ASC`
	return db.queryAvailability(ctx, query, sitterID)
}

// GetAvailabilityOverlapping returns the sitter's rows that share any point
// with [start, end], boundaries inclusive. This is the one interval
// relation the whole system uses for date-range comparisons.
func (db *DB) GetAvailabilityOverlapping(ctx context.Context, sitterID int64, start, end time.Time) ([]*models.Availability, error) {
	query := `SELECT id, sitter_id, start_date, end_date, is_available
              FROM availability
              WHERE sitter_id = ? AND start_date <= ? AND end_date >= ?
              ORDER BY start_date ASC`
	return db.queryAvailability(ctx, query, sitterID, end, start)
}

func (db *DB) queryAvailability(ctx context.Context, query string, args ...any) ([]*models.Availability, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var entries []*models.Availability
	for rows.Next() {
		a := &models.Availability{}
		if err := rows.Scan(&a.ID, &a.SitterID, &a.StartDate, &a.EndDate, &a.IsAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

func (db *DB) UpdateAvailability(ctx context.Context, a *models.Availability) error {
	query := `UPDATE availability SET start_date = ?, end_date = ?, is_available = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, a.StartDate, a.EndDate, a.IsAvailable, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteAvailability(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM availability WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchUpsertAvailability applies a batch of entries in one transaction.
// Entries carrying an id update the matching row; unknown ids are skipped.
// Entries without an id are inserted and receive store-generated ids.
func (db *DB) BatchUpsertAvailability(ctx context.Context, sitterID int64, entries []models.AvailabilityUpdate) ([]*models.Availability, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var applied []*models.Availability
	for _, entry := range entries {
		if entry.ID != nil {
			result, err := tx.ExecContext(ctx,
				`UPDATE availability SET start_date = ?, end_date = ?, is_available = ? WHERE id = ? AND sitter_id = ?`,
				entry.StartDate, entry.EndDate, entry.IsAvailable, *entry.ID, sitterID,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to update availability %d: %w", *entry.ID, err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				// Unknown id: skipped, matching the batch-update contract.
				continue
			}
			applied = append(applied, &models.Availability{
				ID: *entry.ID, SitterID: sitterID,
				StartDate: entry.StartDate, EndDate: entry.EndDate, IsAvailable: entry.IsAvailable,
			})
			continue
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO availability (sitter_id, start_date, end_date, is_available) VALUES (?, ?, ?, ?)`,
			sitterID, entry.StartDate, entry.EndDate, entry.IsAvailable,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert availability: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
		applied = append(applied, &models.Availability{
			ID: id, SitterID: sitterID,
			StartDate: entry.StartDate, EndDate: entry.EndDate, IsAvailable: entry.IsAvailable,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit availability batch: %w", err)
	}
	return applied, nil
}
