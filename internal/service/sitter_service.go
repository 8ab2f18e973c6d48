package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pawsit/internal/database"
	"pawsit/internal/domain"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

var allowedPhotoTypes = []string{"jpg", "jpeg", "png", "gif"}

type SitterService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewSitterService(store domain.Store, logger *zerolog.Logger) *SitterService {
	return &SitterService{store: store, logger: logger}
}

func (s *SitterService) RegisterSitter(ctx context.Context, sitter *models.PetSitter) error {
	if sitter.Email == "" || sitter.Name == "" {
		return fmt.Errorf("%w: email and name are required", ErrValidation)
	}
	if err := validateBio(sitter.Bio); err != nil {
		return err
	}
	sitter.ProfileCompleteness = profileCompleteness(sitter)
	return s.store.CreatePetSitter(ctx, sitter)
}

func (s *SitterService) GetSitter(ctx context.Context, id int64) (*models.PetSitter, error) {
	sitter, err := s.store.GetPetSitter(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: sitter %d", ErrNotFound, id)
	}
	return sitter, err
}

func (s *SitterService) ListSitters(ctx context.Context) ([]*models.PetSitter, error) {
	return s.store.GetAllPetSitters(ctx)
}

// UpdateProfile replaces the sitter's mutable profile fields and
// recomputes the completeness score.
func (s *SitterService) UpdateProfile(ctx context.Context, sitter *models.PetSitter) error {
	if err := validateBio(sitter.Bio); err != nil {
		return err
	}
	sitter.ProfileCompleteness = profileCompleteness(sitter)

	err := s.store.UpdatePetSitter(ctx, sitter)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: sitter %d", ErrNotFound, sitter.ID)
	}
	return err
}

func (s *SitterService) GetServices(ctx context.Context, sitterID int64) ([]*models.Service, error) {
	return s.store.GetServicesBySitter(ctx, sitterID)
}

func (s *SitterService) AddService(ctx context.Context, svc *models.Service) error {
	if svc.Name == "" {
		return fmt.Errorf("%w: service name is required", ErrValidation)
	}
	if svc.Price < 0 {
		return fmt.Errorf("%w: service price must not be negative", ErrValidation)
	}
	if _, err := s.GetSitter(ctx, svc.SitterID); err != nil {
		return err
	}
	return s.store.CreateService(ctx, svc)
}

func (s *SitterService) UpdateService(ctx context.Context, svc *models.Service) error {
	if svc.Name == "" {
		return fmt.Errorf("%w: service name is required", ErrValidation)
	}
	if svc.Price < 0 {
		return fmt.Errorf("%w: service price must not be negative", ErrValidation)
	}
	err := s.store.UpdateService(ctx, svc)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: service %d", ErrNotFound, svc.ID)
	}
	return err
}

// ReplaceServices makes the stored service list match the given one:
// entries with an id update in place, entries without are created, and
// existing services missing from the list are deleted.
func (s *SitterService) ReplaceServices(ctx context.Context, sitterID int64, services []models.Service) ([]*models.Service, error) {
	if _, err := s.GetSitter(ctx, sitterID); err != nil {
		return nil, err
	}
	for i := range services {
		if services[i].Name == "" {
			return nil, fmt.Errorf("%w: service name is required", ErrValidation)
		}
		if services[i].Price < 0 {
			return nil, fmt.Errorf("%w: service price must not be negative", ErrValidation)
		}
	}

	existing, err := s.store.GetServicesBySitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	keep := make(map[int64]bool, len(services))

	for i := range services {
		svc := &services[i]
		svc.SitterID = sitterID
		if svc.ID > 0 {
			if err := s.store.UpdateService(ctx, svc); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return nil, fmt.Errorf("%w: service %d", ErrNotFound, svc.ID)
				}
				return nil, err
			}
		} else if err := s.store.CreateService(ctx, svc); err != nil {
			return nil, err
		}
		keep[svc.ID] = true
	}

	for _, svc := range existing {
		if !keep[svc.ID] {
			if err := s.store.DeleteService(ctx, svc.ID); err != nil {
				return nil, err
			}
		}
	}

	return s.store.GetServicesBySitter(ctx, sitterID)
}

func (s *SitterService) RemoveService(ctx context.Context, id int64) error {
	err := s.store.DeleteService(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: service %d", ErrNotFound, id)
	}
	return err
}

// AddPhoto accepts a base64 data URL (jpg/jpeg/png/gif, decoded size up
// to 5MB) and appends it to the sitter's gallery.
func (s *SitterService) AddPhoto(ctx context.Context, sitterID int64, dataURL string) (*models.PetSitter, error) {
	if err := validatePhotoDataURL(dataURL); err != nil {
		return nil, err
	}

	sitter, err := s.GetSitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}

	sitter.Photos = append(sitter.Photos, dataURL)
	sitter.ProfileCompleteness = profileCompleteness(sitter)
	if err := s.store.UpdatePetSitter(ctx, sitter); err != nil {
		return nil, err
	}
	return sitter, nil
}

// RemovePhoto drops the photo at the given zero-based index.
func (s *SitterService) RemovePhoto(ctx context.Context, sitterID int64, index int) (*models.PetSitter, error) {
	sitter, err := s.GetSitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(sitter.Photos) {
		return nil, fmt.Errorf("%w: photo index %d out of range", ErrValidation, index)
	}

	sitter.Photos = append(sitter.Photos[:index], sitter.Photos[index+1:]...)
	sitter.ProfileCompleteness = profileCompleteness(sitter)
	if err := s.store.UpdatePetSitter(ctx, sitter); err != nil {
		return nil, err
	}
	return sitter, nil
}

func validateBio(bio string) error {
	if bio != "" && len(strings.TrimSpace(bio)) < models.MinBioLength {
		return fmt.Errorf("%w: bio must be at least %d characters", ErrValidation, models.MinBioLength)
	}
	return nil
}

func validatePhotoDataURL(dataURL string) error {
	rest, ok := strings.CutPrefix(dataURL, "data:image/")
	if !ok {
		return fmt.Errorf("%w: photo must be an image data URL", ErrValidation)
	}

	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return fmt.Errorf("%w: photo must be base64 encoded", ErrValidation)
	}

	typeOK := false
	for _, t := range allowedPhotoTypes {
		if strings.EqualFold(mediaType, t) {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return fmt.Errorf("%w: photo type must be one of %s", ErrValidation, strings.Join(allowedPhotoTypes, ", "))
	}

	// Размер считаем по base64, без декодирования
	if len(payload)/4*3 > models.MaxPhotoBytes {
		return fmt.Errorf("%w: photo exceeds %d bytes", ErrValidation, models.MaxPhotoBytes)
	}
	return nil
}

// profileCompleteness scores how much of the profile is filled in, as a
// percentage of seven weighted sections.
func profileCompleteness(sitter *models.PetSitter) int {
	checks := []bool{
		len(strings.TrimSpace(sitter.Bio)) >= models.MinBioLength,
		sitter.Phone != "",
		sitter.Address != "" && sitter.City != "" && sitter.State != "" && sitter.ZipCode != "",
		sitter.HourlyRate > 0,
		len(sitter.Photos) > 0,
		len(sitter.PetTypesAccepted) > 0,
		len(sitter.Skills) > 0,
	}

	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}
