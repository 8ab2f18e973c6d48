package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

type AvailabilityService struct {
	store   domain.Store
	logger  *zerolog.Logger
	nowFunc func() time.Time
}

func NewAvailabilityService(store domain.Store, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		store:   store,
		logger:  logger,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func (s *AvailabilityService) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

func (s *AvailabilityService) GetEntry(ctx context.Context, id int64) (*models.Availability, error) {
	entry, err := s.store.GetAvailability(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: availability %d", ErrNotFound, id)
	}
	return entry, err
}

func (s *AvailabilityService) GetSchedule(ctx context.Context, sitterID int64) ([]*models.Availability, error) {
	return s.store.GetAvailabilityForSitter(ctx, sitterID)
}

func (s *AvailabilityService) CreateEntry(ctx context.Context, entry *models.Availability) error {
	if err := s.validateRange(entry.StartDate, entry.EndDate); err != nil {
		return err
	}
	return s.store.CreateAvailability(ctx, entry)
}

func (s *AvailabilityService) UpdateEntry(ctx context.Context, entry *models.Availability) error {
	if err := s.validateRange(entry.StartDate, entry.EndDate); err != nil {
		return err
	}
	err := s.store.UpdateAvailability(ctx, entry)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: availability %d", ErrNotFound, entry.ID)
	}
	return err
}

func (s *AvailabilityService) DeleteEntry(ctx context.Context, id int64) error {
	err := s.store.DeleteAvailability(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: availability %d", ErrNotFound, id)
	}
	return err
}

// UpdateSchedule applies a batch of schedule changes. Entries carrying an
// id update that row in place; unknown ids are skipped. Entries without
// an id become new rows with store-generated ids. Returns the rows that
// were actually applied.
func (s *AvailabilityService) UpdateSchedule(ctx context.Context, sitterID int64, entries []models.AvailabilityUpdate) ([]*models.Availability, error) {
	if _, err := s.store.GetPetSitter(ctx, sitterID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: sitter %d", ErrNotFound, sitterID)
		}
		return nil, err
	}

	for _, entry := range entries {
		if err := s.validateRange(entry.StartDate, entry.EndDate); err != nil {
			return nil, err
		}
	}

	applied, err := s.store.BatchUpsertAvailability(ctx, sitterID, entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sitter_id", sitterID).Int("applied", len(applied)).Msg("schedule updated")
	return applied, nil
}

// IsSitterAvailable checks the ledger only: every row overlapping the
// window must be open. No rows at all counts as open — sitters without a
// published calendar stay bookable.
func (s *AvailabilityService) IsSitterAvailable(ctx context.Context, sitterID int64, start, end time.Time) (bool, error) {
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

func (s *AvailabilityService) validateRange(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	today := s.nowFunc().Truncate(24 * time.Hour)
	if start.Truncate(24 * time.Hour).Before(today) {
		return ErrInvalidDateRange
	}
	return nil
}
