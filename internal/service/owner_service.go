package service

import (
	"context"
	"errors"
	"fmt"

	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

type OwnerService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewOwnerService(store domain.Store, logger *zerolog.Logger) *OwnerService {
	return &OwnerService{store: store, logger: logger}
}

func (s *OwnerService) RegisterOwner(ctx context.Context, owner *models.PetOwner) error {
	if owner.Email == "" || owner.Name == "" {
		return fmt.Errorf("%w: email and name are required", ErrValidation)
	}
	return s.store.CreatePetOwner(ctx, owner)
}

func (s *OwnerService) GetOwner(ctx context.Context, id int64) (*models.PetOwner, error) {
	owner, err := s.store.GetPetOwner(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: owner %d", ErrNotFound, id)
	}
	return owner, err
}

func (s *OwnerService) GetOwnerBookings(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	if _, err := s.GetOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.store.GetBookingsByOwner(ctx, ownerID)
}

func (s *OwnerService) AddPet(ctx context.Context, pet *models.Pet) error {
	if pet.Name == "" || pet.Type == "" {
		return fmt.Errorf("%w: pet name and type are required", ErrValidation)
	}
	if _, err := s.GetOwner(ctx, pet.OwnerID); err != nil {
		return err
	}
	return s.store.CreatePet(ctx, pet)
}

func (s *OwnerService) GetPet(ctx context.Context, id int64) (*models.Pet, error) {
	pet, err := s.store.GetPet(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: pet %d", ErrNotFound, id)
	}
	return pet, err
}

func (s *OwnerService) GetPets(ctx context.Context, ownerID int64) ([]*models.Pet, error) {
	return s.store.GetPetsByOwner(ctx, ownerID)
}

func (s *OwnerService) UpdatePet(ctx context.Context, pet *models.Pet) error {
	if pet.Name == "" || pet.Type == "" {
		return fmt.Errorf("%w: pet name and type are required", ErrValidation)
	}
	err := s.store.UpdatePet(ctx, pet)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: pet %d", ErrNotFound, pet.ID)
	}
	return err
}

func (s *OwnerService) RemovePet(ctx context.Context, id int64) error {
	err := s.store.DeletePet(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: pet %d", ErrNotFound, id)
	}
	return err
}
