package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pawsit/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	query := `INSERT INTO reviews (id, booking_id, owner_id, sitter_id, rating, comment, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, query,
		review.ID, review.BookingID, review.OwnerID, review.SitterID,
		review.Rating, review.Comment, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	review.CreatedAt = now
	return nil
}

func (db *DB) GetReview(ctx context.Context, id string) (*models.Review, error) {
	query := `SELECT id, booking_id, owner_id, sitter_id, rating, comment, created_at
              FROM reviews WHERE id = ?`
	review, err := scanReview(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// GetReviewByBooking returns the booking's review, if any. Used for the
// one-review-per-booking check.
func (db *DB) GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error) {
	query := `SELECT id, booking_id, owner_id, sitter_id, rating, comment, created_at
              FROM reviews WHERE booking_id = ?`
	review, err := scanReview(db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review by booking: %w", err)
	}
	return review, nil
}

// GetReviewsBySitter pages through a sitter's reviews, newest first.
func (db *DB) GetReviewsBySitter(ctx context.Context, sitterID int64, skip, take int) ([]*models.Review, error) {
	query := `SELECT id, booking_id, owner_id, sitter_id, rating, comment, created_at
              FROM reviews WHERE sitter_id = ?
              ORDER BY created_at DESC, id DESC
              LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, sitterID, take, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews by sitter: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (db *DB) CountReviewsBySitter(ctx context.Context, sitterID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE sitter_id = ?`, sitterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// AverageRatingBySitter returns the sitter's mean rating rounded to one
// decimal, or 0 when the sitter has no reviews.
func (db *DB) AverageRatingBySitter(ctx context.Context, sitterID int64) (float64, error) {
	var avg float64
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(ROUND(AVG(rating), 1), 0) FROM reviews WHERE sitter_id = ?`,
		sitterID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, nil
}

func (db *DB) DeleteReview(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.BookingID, &r.OwnerID, &r.SitterID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
