package domain

import (
	"context"
	"time"

	"pawsit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Store is the persistence surface the services depend on. *database.DB
// satisfies it; tests substitute mocks.
type Store interface {
	// Owners and pets
	CreatePetOwner(ctx context.Context, owner *models.PetOwner) error
	GetPetOwner(ctx context.Context, id int64) (*models.PetOwner, error)
	DeletePetOwner(ctx context.Context, id int64) error
	CreatePet(ctx context.Context, pet *models.Pet) error
	GetPet(ctx context.Context, id int64) (*models.Pet, error)
	GetPetsByOwner(ctx context.Context, ownerID int64) ([]*models.Pet, error)
	UpdatePet(ctx context.Context, pet *models.Pet) error
	DeletePet(ctx context.Context, id int64) error

	// Sitters and services
	CreatePetSitter(ctx context.Context, sitter *models.PetSitter) error
	GetPetSitter(ctx context.Context, id int64) (*models.PetSitter, error)
	GetAllPetSitters(ctx context.Context) ([]*models.PetSitter, error)
	GetPetSittersByZipCode(ctx context.Context, zipCode string) ([]*models.PetSitter, error)
	UpdatePetSitter(ctx context.Context, sitter *models.PetSitter) error
	DeletePetSitter(ctx context.Context, id int64) error
	CreateService(ctx context.Context, svc *models.Service) error
	GetService(ctx context.Context, id int64) (*models.Service, error)
	GetServicesBySitter(ctx context.Context, sitterID int64) ([]*models.Service, error)
	UpdateService(ctx context.Context, svc *models.Service) error
	DeleteService(ctx context.Context, id int64) error

	// Availability ledger
	CreateAvailability(ctx context.Context, a *models.Availability) error
	GetAvailability(ctx context.Context, id int64) (*models.Availability, error)
	GetAvailabilityForSitter(ctx context.Context, sitterID int64) ([]*models.Availability, error)
	GetAvailabilityOverlapping(ctx context.Context, sitterID int64, start, end time.Time) ([]*models.Availability, error)
	UpdateAvailability(ctx context.Context, a *models.Availability) error
	DeleteAvailability(ctx context.Context, id int64) error
	BatchUpsertAvailability(ctx context.Context, sitterID int64, entries []models.AvailabilityUpdate) ([]*models.Availability, error)

	// Bookings
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingsBySitter(ctx context.Context, sitterID int64) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	GetAcceptedBookingsForSitter(ctx context.Context, sitterID int64) ([]*models.Booking, error)
	GetPendingBookingsForSitter(ctx context.Context, sitterID int64) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, booking *models.Booking) error
	AcceptBookingAndBlockDates(ctx context.Context, booking *models.Booking) error
	CancelBookingAndRestoreDates(ctx context.Context, booking *models.Booking, restore bool) error
	DeleteBooking(ctx context.Context, id int64) error

	// Messages
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	GetMessagesByBooking(ctx context.Context, bookingID int64) ([]*models.Message, error)
	MarkMessageRead(ctx context.Context, id int64) error
	CountUnreadForUser(ctx context.Context, userID int64) (int64, error)
	DeleteMessage(ctx context.Context, id int64) error

	// Reviews
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	GetReviewByBooking(ctx context.Context, bookingID int64) (*models.Review, error)
	GetReviewsBySitter(ctx context.Context, sitterID int64, skip, take int) ([]*models.Review, error)
	CountReviewsBySitter(ctx context.Context, sitterID int64) (int64, error)
	AverageRatingBySitter(ctx context.Context, sitterID int64) (float64, error)
	DeleteReview(ctx context.Context, id string) error
}

// RatingCache caches per-sitter rating aggregates.
type RatingCache interface {
	GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error)
	SetRatingStats(ctx context.Context, stats *models.RatingStats, ttl time.Duration) error
	InvalidateRatingStats(ctx context.Context, sitterID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SheetsWriter mirrors booking state into a spreadsheet for operations.
type SheetsWriter interface {
	UpdateBookingsSheet(ctx context.Context, bookings []*models.Booking) error
	ReplaceBookingsSheet(ctx context.Context, bookings []*models.Booking) error
	AppendBooking(ctx context.Context, booking *models.Booking) error
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

// BookingExporter writes booking reports to files for operations.
type BookingExporter interface {
	ExportBookings(ctx context.Context, startDate, endDate time.Time) (string, error)
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	GetBookingsBySitter(ctx context.Context, sitterID int64) ([]*models.Booking, error)
	GetPendingBookings(ctx context.Context, sitterID int64) ([]*models.Booking, error)
	AcceptBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
	DeclineBooking(ctx context.Context, bookingID int64, reason string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64, reason string) (*models.Booking, *models.RefundQuote, error)
	CompleteBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
}

type AvailabilityService interface {
	GetEntry(ctx context.Context, id int64) (*models.Availability, error)
	GetSchedule(ctx context.Context, sitterID int64) ([]*models.Availability, error)
	CreateEntry(ctx context.Context, entry *models.Availability) error
	UpdateEntry(ctx context.Context, entry *models.Availability) error
	DeleteEntry(ctx context.Context, id int64) error
	UpdateSchedule(ctx context.Context, sitterID int64, entries []models.AvailabilityUpdate) ([]*models.Availability, error)
	IsSitterAvailable(ctx context.Context, sitterID int64, start, end time.Time) (bool, error)
}

type SearchService interface {
	Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.SitterSummary, error)
}

type MessageService interface {
	SendMessage(ctx context.Context, bookingID, senderID int64, content string) (*models.Message, error)
	GetConversation(ctx context.Context, bookingID int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, messageID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type ReviewService interface {
	CreateReview(ctx context.Context, bookingID int64, rating int, comment string) (*models.Review, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	GetReviewsForSitter(ctx context.Context, sitterID int64, skip, take int) ([]*models.Review, error)
	GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error)
	DeleteReview(ctx context.Context, id string) (bool, error)
}

type SitterService interface {
	RegisterSitter(ctx context.Context, sitter *models.PetSitter) error
	GetSitter(ctx context.Context, id int64) (*models.PetSitter, error)
	ListSitters(ctx context.Context) ([]*models.PetSitter, error)
	UpdateProfile(ctx context.Context, sitter *models.PetSitter) error
	GetServices(ctx context.Context, sitterID int64) ([]*models.Service, error)
	AddService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, svc *models.Service) error
	ReplaceServices(ctx context.Context, sitterID int64, services []models.Service) ([]*models.Service, error)
	RemoveService(ctx context.Context, id int64) error
	AddPhoto(ctx context.Context, sitterID int64, dataURL string) (*models.PetSitter, error)
	RemovePhoto(ctx context.Context, sitterID int64, index int) (*models.PetSitter, error)
}

type OwnerService interface {
	RegisterOwner(ctx context.Context, owner *models.PetOwner) error
	GetOwner(ctx context.Context, id int64) (*models.PetOwner, error)
	GetOwnerBookings(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	AddPet(ctx context.Context, pet *models.Pet) error
	GetPet(ctx context.Context, id int64) (*models.Pet, error)
	GetPets(ctx context.Context, ownerID int64) ([]*models.Pet, error)
	UpdatePet(ctx context.Context, pet *models.Pet) error
	RemovePet(ctx context.Context, id int64) error
}
