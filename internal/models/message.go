package models

import "time"

type Message struct {
	ID         int64     `json:"id"`
	BookingID  int64     `json:"booking_id"`
	SenderID   int64     `json:"sender_id"`
	SenderType string    `json:"sender_type"` // "Owner" or "Sitter", derived from the booking parties
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
	IsRead     bool      `json:"is_read"`
}
