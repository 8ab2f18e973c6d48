package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/events"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store      domain.Store
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     *zerolog.Logger
	nowFunc    func() time.Time
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:      store,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     logger,
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock, for tests exercising the refund boundary.
func (s *BookingService) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := s.nowFunc()
	if err := validateBookingDates(booking.StartDate, booking.EndDate, now); err != nil {
		return err
	}

	if _, err := s.store.GetPetSitter(ctx, booking.SitterID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: sitter %d", ErrNotFound, booking.SitterID)
		}
		return err
	}

	available, err := s.sitterLedgerOpen(ctx, booking.SitterID, booking.StartDate, booking.EndDate)
	if err != nil {
		return err
	}
	if !available {
		return ErrSchedulingConflict
	}

	conflict, err := s.hasAcceptedConflict(ctx, booking.SitterID, booking.StartDate, booking.EndDate, 0)
	if err != nil {
		return err
	}
	if conflict {
		return ErrSchedulingConflict
	}

	booking.Status = models.StatusPending
	booking.StatusReason = ""
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCreated, booking, "owner", booking.OwnerID)
	s.enqueueSync(ctx, booking, "upsert")
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	return booking, err
}

func (s *BookingService) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	return s.store.GetBookingsByOwner(ctx, ownerID)
}

func (s *BookingService) GetBookingsBySitter(ctx context.Context, sitterID int64) ([]*models.Booking, error) {
	return s.store.GetBookingsBySitter(ctx, sitterID)
}

func (s *BookingService) GetPendingBookings(ctx context.Context, sitterID int64) ([]*models.Booking, error) {
	return s.store.GetPendingBookingsForSitter(ctx, sitterID)
}

func (s *BookingService) AcceptBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending {
		return nil, ErrInvalidStateTransition
	}

	conflict, err := s.hasAcceptedConflict(ctx, booking.SitterID, booking.StartDate, booking.EndDate, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSchedulingConflict
	}

	now := s.nowFunc()
	booking.Status = models.StatusAccepted
	booking.StatusReason = "Accepted by sitter"
	booking.AcceptedAt = &now

	if err := s.store.AcceptBookingAndBlockDates(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingAccepted, booking, "sitter", booking.SitterID)
	s.enqueueSync(ctx, booking, "update_status")
	return booking, nil
}

func (s *BookingService) DeclineBooking(ctx context.Context, bookingID int64, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: decline reason is required", ErrValidation)
	}

	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusPending {
		return nil, ErrInvalidStateTransition
	}

	now := s.nowFunc()
	booking.Status = models.StatusDeclined
	booking.StatusReason = reason
	// Нет отдельного declinedAt, переиспользуем cancelledAt
	booking.CancelledAt = &now

	if err := s.store.UpdateBookingStatusWithVersion(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingDeclined, booking, "sitter", booking.SitterID)
	s.enqueueSync(ctx, booking, "update_status")
	return booking, nil
}

// CancelBooking cancels a pending or accepted booking and returns the
// refund quote. Full refund with 24 or more hours before the start,
// nothing after that.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, reason string) (*models.Booking, *models.RefundQuote, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	// Completed is its own case for clearer messaging; the other terminal
	// states report as already-terminal.
	if booking.Status == models.StatusCompleted {
		return nil, nil, ErrInvalidStateTransition
	}
	if models.IsTerminalStatus(booking.Status) {
		return nil, nil, ErrAlreadyTerminal
	}

	now := s.nowFunc()
	quote := refundQuote(booking, now)

	wasAccepted := booking.Status == models.StatusAccepted
	if reason == "" {
		reason = "Cancelled by user"
	}
	booking.Status = models.StatusCancelled
	booking.StatusReason = reason
	booking.CancelledAt = &now

	if err := s.store.CancelBookingAndRestoreDates(ctx, booking, wasAccepted); err != nil {
		return nil, nil, err
	}

	s.publishEvent(events.EventBookingCancelled, booking, "owner", booking.OwnerID)
	s.enqueueSync(ctx, booking, "update_status")
	return booking, quote, nil
}

func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusAccepted {
		return nil, ErrInvalidStateTransition
	}

	now := s.nowFunc()
	booking.Status = models.StatusCompleted
	booking.CompletedAt = &now

	if err := s.store.UpdateBookingStatusWithVersion(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCompleted, booking, "sitter", booking.SitterID)
	s.enqueueSync(ctx, booking, "update_status")
	return booking, nil
}

func validateBookingDates(start, end, now time.Time) error {
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	today := now.Truncate(24 * time.Hour)
	if start.Truncate(24 * time.Hour).Before(today) {
		return ErrInvalidDateRange
	}
	return nil
}

// sitterLedgerOpen reports whether every availability row overlapping the
// window is open. An empty overlap set counts as open: sitters who never
// published a calendar stay bookable.
func (s *BookingService) sitterLedgerOpen(ctx context.Context, sitterID int64, start, end time.Time) (bool, error) {
	entries, err := s.store.GetAvailabilityOverlapping(ctx, sitterID, start, end)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if !entry.IsAvailable {
			return false, nil
		}
	}
	return true, nil
}

func (s *BookingService) hasAcceptedConflict(ctx context.Context, sitterID int64, start, end time.Time, excludeID int64) (bool, error) {
	accepted, err := s.store.GetAcceptedBookingsForSitter(ctx, sitterID)
	if err != nil {
		return false, err
	}
	for _, other := range accepted {
		if other.ID == excludeID {
			continue
		}
		if other.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func refundQuote(booking *models.Booking, now time.Time) *models.RefundQuote {
	hoursUntilStart := booking.StartDate.Sub(now).Hours()
	if hoursUntilStart >= models.RefundCutoffHours {
		return &models.RefundQuote{
			Amount:     booking.TotalCost,
			Percentage: 100,
			Message:    "Booking cancelled with full refund",
		}
	}
	return &models.RefundQuote{
		Amount:     0,
		Percentage: 0,
		Message:    "Booking cancelled within 24 hours - no refund per policy",
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		OwnerID:     booking.OwnerID,
		SitterID:    booking.SitterID,
		ServiceID:   booking.ServiceID,
		Status:      booking.Status,
		Reason:      booking.StatusReason,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalCost:   booking.TotalCost,
		ChangedBy:   changedBy,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.syncWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = booking.Status
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
