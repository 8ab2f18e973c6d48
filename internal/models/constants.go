package models

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	SenderOwner  = "Owner"
	SenderSitter = "Sitter"
)

const (
	// MaxMessageLength ограничение длины сообщения и комментария отзыва
	MaxMessageLength = 1000

	// MinBioLength minimum sitter bio length when a bio is provided
	MinBioLength = 50

	// MaxPhotoBytes upload limit for profile photos
	MaxPhotoBytes = 5 * 1024 * 1024

	// RefundCutoffHours full refund boundary for cancellations
	RefundCutoffHours = 24

	// DefaultReviewPageSize page size when take is missing or invalid
	DefaultReviewPageSize = 10

	// MaxReviewPageSize server-side clamp for review pagination
	MaxReviewPageSize = 50

	// MessageRateLimit messages per sender per window
	MessageRateLimit = 20

	// MessageRateWindowSeconds длина окна для лимита сообщений
	MessageRateWindowSeconds = 60

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000

	// RatingCacheTTL время жизни кэша рейтингов в секундах
	RatingCacheTTL = 5 * 60
)

// IsTerminalStatus reports whether a booking status permits no further transitions.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	}
	return false
}
