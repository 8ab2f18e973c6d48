package models

import "time"

// Review is keyed by an opaque uuid string; all other entities use
// integer surrogate keys.
type Review struct {
	ID        string    `json:"id"`
	BookingID int64     `json:"booking_id"`
	OwnerID   int64     `json:"owner_id"`
	SitterID  int64     `json:"sitter_id"`
	Rating    int       `json:"rating"` // 1-5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingStats aggregates a sitter's reviews.
type RatingStats struct {
	SitterID      int64   `json:"sitter_id"`
	AverageRating float64 `json:"average_rating"` // rounded to 1 decimal, 0 with no reviews
	ReviewCount   int     `json:"review_count"`
}
