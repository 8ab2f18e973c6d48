package notify

import (
	"encoding/json"
	"fmt"

	"pawsit/internal/domain"
	"pawsit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes booking alerts to the operations chat. A nil
// sender disables it, so the wiring code never has to branch.
type TelegramNotifier struct {
	bot    domain.TelegramSender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(bot domain.TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}
}

// Subscribe registers handlers for every booking lifecycle event.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	types := []string{
		events.EventBookingCreated,
		events.EventBookingAccepted,
		events.EventBookingDeclined,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
	}
	for _, eventType := range types {
		bus.Subscribe(eventType, n.handleBookingEvent)
	}
}

func (n *TelegramNotifier) handleBookingEvent(event *events.Event) error {
	if n.bot == nil || n.chatID == 0 {
		return nil
	}

	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode booking event")
		return err
	}

	text := formatBookingAlert(event.Type, payload)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", payload.BookingID).Msg("telegram notify failed")
		return err
	}
	return nil
}

func formatBookingAlert(eventType string, p events.BookingEventPayload) string {
	var title string
	switch eventType {
	case events.EventBookingCreated:
		title = "🆕 New booking request"
	case events.EventBookingAccepted:
		title = "✅ Booking accepted"
	case events.EventBookingDeclined:
		title = "🚫 Booking declined"
	case events.EventBookingCancelled:
		title = "❌ Booking cancelled"
	case events.EventBookingCompleted:
		title = "🏁 Booking completed"
	default:
		title = eventType
	}

	text := fmt.Sprintf("%s\n#%d owner %d → sitter %d\n%s — %s, $%.2f",
		title, p.BookingID, p.OwnerID, p.SitterID,
		p.StartDate.Format("02.01.2006"), p.EndDate.Format("02.01.2006"), p.TotalCost)
	if p.Reason != "" {
		text += "\nReason: " + p.Reason
	}
	return text
}
