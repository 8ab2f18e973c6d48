package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/models"
)

func (db *DB) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `INSERT INTO messages (booking_id, sender_id, sender_type, content, sent_at, is_read)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		msg.BookingID, msg.SenderID, msg.SenderType, msg.Content, now, msg.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	msg.ID = id
	msg.SentAt = now
	return nil
}

func (db *DB) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	query := `SELECT id, booking_id, sender_id, sender_type, content, sent_at, is_read
              FROM messages WHERE id = ?`

	var msg models.Message
	err := db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.BookingID, &msg.SenderID, &msg.SenderType, &msg.Content, &msg.SentAt, &msg.IsRead,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

// GetMessagesByBooking returns the booking's conversation in send order.
func (db *DB) GetMessagesByBooking(ctx context.Context, bookingID int64) ([]*models.Message, error) {
	query := `SELECT id, booking_id, sender_id, sender_type, content, sent_at, is_read
              FROM messages WHERE booking_id = ? ORDER BY sent_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages by booking: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m := &models.Message{}
		err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.SenderType, &m.Content, &m.SentAt, &m.IsRead)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (db *DB) MarkMessageRead(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnreadForUser counts unread messages addressed to the user across
// every booking they participate in. A message is addressed to the user
// when they are on the booking but did not send it.
func (db *DB) CountUnreadForUser(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*)
              FROM messages m
              JOIN bookings b ON b.id = m.booking_id
              WHERE m.is_read = 0
                AND m.sender_id != ?
                AND (b.owner_id = ? OR b.sitter_id = ?)`

	var count int64
	err := db.QueryRowContext(ctx, query, userID, userID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func (db *DB) DeleteMessage(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
