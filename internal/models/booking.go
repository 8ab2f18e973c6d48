package models

import "time"

type Booking struct {
	ID           int64      `json:"id"`
	OwnerID      int64      `json:"owner_id"`
	SitterID     int64      `json:"sitter_id"`
	ServiceID    int64      `json:"service_id"`
	PetIDs       []int64    `json:"pet_ids"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	TotalCost    float64    `json:"total_cost"`
	Status       string     `json:"status"` // pending, accepted, declined, completed, cancelled
	StatusReason string     `json:"status_reason"`
	CreatedAt    time.Time  `json:"created_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	Version      int64      `json:"version"`
}

// Overlaps reports whether the booking interval shares any point in time
// with [start, end]. Boundaries are inclusive: touching endpoints conflict.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return DatesOverlap(b.StartDate, b.EndDate, start, end)
}

// DatesOverlap is the single interval relation used for conflict detection
// and availability reconciliation. Inclusive on both boundaries.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// RefundQuote describes the outcome of the cancellation policy.
type RefundQuote struct {
	Amount     float64 `json:"refund_amount"`
	Percentage int     `json:"refund_percentage"`
	Message    string  `json:"message"`
}
