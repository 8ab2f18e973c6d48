package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/events"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

type MessageService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	limiter  domain.RatingCache
	logger   *zerolog.Logger
}

// NewMessageService wires the messaging rules. A nil limiter disables
// the per-sender message rate limit.
func NewMessageService(store domain.Store, eventBus domain.EventPublisher, limiter domain.RatingCache, logger *zerolog.Logger) *MessageService {
	return &MessageService{
		store:    store,
		eventBus: eventBus,
		limiter:  limiter,
		logger:   logger,
	}
}

// SendMessage appends a message to the booking thread. Messaging opens
// once the sitter has responded: pending and declined bookings carry no
// messages. The sender must be the booking's owner or sitter; the role is
// derived from that equality, never supplied by the caller.
func (s *MessageService) SendMessage(ctx context.Context, bookingID, senderID int64, content string) (*models.Message, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	if err != nil {
		return nil, err
	}

	if booking.Status == models.StatusPending || booking.Status == models.StatusDeclined {
		return nil, ErrMessagingNotAllowed
	}

	content = strings.TrimSpace(content)
	if content == "" || len(content) > models.MaxMessageLength {
		return nil, fmt.Errorf("%w: message content must be 1-%d characters", ErrValidation, models.MaxMessageLength)
	}

	var senderType string
	switch senderID {
	case booking.OwnerID:
		senderType = models.SenderOwner
	case booking.SitterID:
		senderType = models.SenderSitter
	default:
		return nil, ErrMessagingNotAllowed
	}

	if s.limiter != nil {
		window := time.Duration(models.MessageRateWindowSeconds) * time.Second
		allowed, err := s.limiter.CheckRateLimit(ctx, senderID, models.MessageRateLimit, window)
		if err != nil {
			// Лимитер недоступен — пропускаем, сообщения важнее
			s.logger.Error().Err(err).Int64("sender_id", senderID).Msg("rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	msg := &models.Message{
		BookingID:  bookingID,
		SenderID:   senderID,
		SenderType: senderType,
		Content:    content,
		IsRead:     false,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.MessageEventPayload{
			MessageID:  msg.ID,
			BookingID:  bookingID,
			SenderID:   senderID,
			SenderType: senderType,
		}
		if err := s.eventBus.PublishJSON(events.EventMessageSent, payload); err != nil {
			s.logger.Error().Err(err).Int64("message_id", msg.ID).Msg("publish event error")
		}
	}
	return msg, nil
}

func (s *MessageService) GetConversation(ctx context.Context, bookingID int64) ([]*models.Message, error) {
	if _, err := s.store.GetBooking(ctx, bookingID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, err
	}
	return s.store.GetMessagesByBooking(ctx, bookingID)
}

// MarkRead is idempotent: marking an already-read message is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, messageID int64) error {
	msg, err := s.store.GetMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
	}
	if err != nil {
		return err
	}
	if msg.IsRead {
		return nil
	}
	return s.store.MarkMessageRead(ctx, messageID)
}

func (s *MessageService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnreadForUser(ctx, userID)
}
