package worker

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

type fakeSheets struct {
	err          error
	upsertCalls  int
	deleteCalls  int
	statusCalls  int
	lastStatus   string
	lastDeleteID int64
}

func (f *fakeSheets) UpsertBooking(_ *models.Booking) error {
	f.upsertCalls++
	return f.err
}

func (f *fakeSheets) DeleteBookingRow(id int64) error {
	f.deleteCalls++
	f.lastDeleteID = id
	return f.err
}

func (f *fakeSheets) UpdateBookingStatus(_ int64, status string) error {
	f.statusCalls++
	f.lastStatus = status
	return f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testBooking(id int64) *models.Booking {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:        id,
		OwnerID:   1,
		SitterID:  2,
		ServiceID: 3,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
		TotalCost: 120,
		Status:    "pending",
		CreatedAt: time.Now(),
	}
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (string, int, sql.NullTime) {
	t.Helper()
	var status string
	var retryCount int
	var nextRetry sql.NullTime
	err := db.QueryRow(`SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id).
		Scan(&status, &retryCount, &nextRetry)
	if err != nil {
		t.Fatalf("load task: %v", err)
	}
	return status, retryCount, nextRetry
}

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	booking := testBooking(1)
	if err := worker.EnqueueTask(ctx, TaskUpsert, booking.ID, booking, ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if sheets.upsertCalls != 1 {
		t.Fatalf("expected upsert call, got %d", sheets.upsertCalls)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	ctx := context.Background()
	booking := testBooking(2)
	if err := worker.EnqueueTask(ctx, TaskUpsert, booking.ID, booking, ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, _, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if !nextRetry.Valid {
		t.Fatalf("expected next_retry_at to be scheduled")
	}
}

func TestProcessTaskFailsAfterMaxRetries(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 1, InitialDelay: time.Second}, nil)

	ctx := context.Background()
	booking := testBooking(3)
	if err := worker.EnqueueTask(ctx, TaskUpsert, booking.ID, booking, ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestHandleSheetTaskRouting(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, nil)

	booking := testBooking(4)
	if err := worker.handleSheetTask(TaskUpsert, sheetTaskPayload{BookingID: 4, Booking: booking}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := worker.handleSheetTask(TaskDelete, sheetTaskPayload{BookingID: 4}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := worker.handleSheetTask(TaskUpdateStatus, sheetTaskPayload{BookingID: 4, Status: "accepted"}); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if sheets.upsertCalls != 1 || sheets.deleteCalls != 1 || sheets.statusCalls != 1 {
		t.Fatalf("unexpected call counts: %+v", sheets)
	}
	if sheets.lastStatus != "accepted" || sheets.lastDeleteID != 4 {
		t.Fatalf("unexpected task arguments: %+v", sheets)
	}

	if err := worker.handleSheetTask("unknown", sheetTaskPayload{BookingID: 4}); err == nil {
		t.Fatalf("expected error for unknown task type")
	}
	if err := worker.handleSheetTask(TaskUpsert, sheetTaskPayload{BookingID: 4}); err == nil {
		t.Fatalf("expected error for missing booking payload")
	}
}

func TestEnqueueTaskValidation(t *testing.T) {
	db := newTestDB(t)
	worker := NewSheetsWorker(db, &fakeSheets{}, nil, RetryPolicy{}, nil)
	ctx := context.Background()

	if err := worker.EnqueueTask(ctx, "", 1, nil, ""); err == nil {
		t.Fatalf("expected error for empty task type")
	}
	if err := worker.EnqueueTask(ctx, TaskDelete, 0, nil, ""); err == nil {
		t.Fatalf("expected error for missing booking id")
	}
}
