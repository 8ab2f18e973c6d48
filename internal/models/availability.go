package models

import "time"

// Availability is a sitter-declared date range, open or blocked for
// bookings. Ranges are not guaranteed non-overlapping.
type Availability struct {
	ID          int64     `json:"id"`
	SitterID    int64     `json:"sitter_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsAvailable bool      `json:"is_available"`
}

// AvailabilityUpdate is one entry of a batch upsert. A nil ID means
// "insert new row"; an unknown ID is skipped.
type AvailabilityUpdate struct {
	ID          *int64    `json:"id,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsAvailable bool      `json:"is_available"`
}
