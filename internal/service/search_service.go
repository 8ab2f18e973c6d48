package service

import (
	"context"
	"math"
	"strings"

	"pawsit/internal/domain"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
)

// RatingProvider is the slice of the review service that search needs.
type RatingProvider interface {
	GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error)
}

type SearchService struct {
	store   domain.Store
	ratings RatingProvider
	logger  *zerolog.Logger
}

func NewSearchService(store domain.Store, ratings RatingProvider, logger *zerolog.Logger) *SearchService {
	return &SearchService{
		store:   store,
		ratings: ratings,
		logger:  logger,
	}
}

// Search narrows the sitter set stage by stage: location, pet type,
// offered services, rating, price, skills, then date availability.
func (s *SearchService) Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.SitterSummary, error) {
	var sitters []*models.PetSitter
	var err error
	if criteria.ZipCode != "" {
		sitters, err = s.store.GetPetSittersByZipCode(ctx, criteria.ZipCode)
	} else {
		sitters, err = s.store.GetAllPetSitters(ctx)
	}
	if err != nil {
		return nil, err
	}

	if criteria.RadiusKm > 0 && (criteria.Latitude != 0 || criteria.Longitude != 0) {
		sitters = filterByRadius(sitters, criteria.Latitude, criteria.Longitude, criteria.RadiusKm)
	}

	if criteria.PetType != "" {
		sitters = filterSitters(sitters, func(sitter *models.PetSitter) bool {
			return containsFold(sitter.PetTypesAccepted, criteria.PetType)
		})
	}

	if len(criteria.ServiceTypes) > 0 {
		filtered := sitters[:0:0]
		for _, sitter := range sitters {
			ok, err := s.offersAllServices(ctx, sitter.ID, criteria.ServiceTypes)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, sitter)
			}
		}
		sitters = filtered
	}

	summaries := make([]*models.SitterSummary, 0, len(sitters))
	for _, sitter := range sitters {
		stats, err := s.ratings.GetRatingStats(ctx, sitter.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &models.SitterSummary{
			PetSitter:     *sitter,
			AverageRating: stats.AverageRating,
			ReviewCount:   stats.ReviewCount,
		})
	}

	if criteria.MinRating > 0 {
		summaries = filterSummaries(summaries, func(sum *models.SitterSummary) bool {
			return sum.AverageRating >= criteria.MinRating
		})
	}

	if criteria.MaxPrice > 0 {
		summaries = filterSummaries(summaries, func(sum *models.SitterSummary) bool {
			return sum.HourlyRate <= criteria.MaxPrice
		})
	}

	if len(criteria.Skills) > 0 {
		summaries = filterSummaries(summaries, func(sum *models.SitterSummary) bool {
			return hasAnySkill(sum.Skills, criteria.Skills)
		})
	}

	if criteria.HasDateRange() {
		filtered := summaries[:0:0]
		for _, sum := range summaries {
			free, err := s.isFreeForRange(ctx, sum.ID, criteria)
			if err != nil {
				return nil, err
			}
			if free {
				filtered = append(filtered, sum)
			}
		}
		summaries = filtered
	}

	return summaries, nil
}

func (s *SearchService) offersAllServices(ctx context.Context, sitterID int64, wanted []string) (bool, error) {
	services, err := s.store.GetServicesBySitter(ctx, sitterID)
	if err != nil {
		return false, err
	}

	offered := make(map[string]bool, len(services))
	for _, svc := range services {
		offered[strings.ToLower(svc.Name)] = true
	}
	for _, name := range wanted {
		if !offered[strings.ToLower(strings.TrimSpace(name))] {
			return false, nil
		}
	}
	return true, nil
}

// isFreeForRange requires every ledger row overlapping the window to be
// open (none at all counts as open) and no accepted booking to overlap.
func (s *SearchService) isFreeForRange(ctx context.Context, sitterID int64, criteria models.SearchCriteria) (bool, error) {
	entries, err := s.store.GetAvailabilityOverlapping(ctx, sitterID, criteria.StartDate, criteria.EndDate)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if !entry.IsAvailable {
			return false, nil
		}
	}

	accepted, err := s.store.GetAcceptedBookingsForSitter(ctx, sitterID)
	if err != nil {
		return false, err
	}
	for _, booking := range accepted {
		if booking.Overlaps(criteria.StartDate, criteria.EndDate) {
			return false, nil
		}
	}
	return true, nil
}

func filterSitters(sitters []*models.PetSitter, keep func(*models.PetSitter) bool) []*models.PetSitter {
	filtered := sitters[:0:0]
	for _, sitter := range sitters {
		if keep(sitter) {
			filtered = append(filtered, sitter)
		}
	}
	return filtered
}

func filterSummaries(summaries []*models.SitterSummary, keep func(*models.SitterSummary) bool) []*models.SitterSummary {
	filtered := summaries[:0:0]
	for _, sum := range summaries {
		if keep(sum) {
			filtered = append(filtered, sum)
		}
	}
	return filtered
}

func filterByRadius(sitters []*models.PetSitter, lat, lng, radiusKm float64) []*models.PetSitter {
	return filterSitters(sitters, func(sitter *models.PetSitter) bool {
		return haversineKm(lat, lng, sitter.Latitude, sitter.Longitude) <= radiusKm
	})
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// hasAnySkill matches when any wanted token is a substring of any sitter
// skill, case-insensitive.
func hasAnySkill(skills, wanted []string) bool {
	for _, token := range wanted {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		for _, skill := range skills {
			if strings.Contains(strings.ToLower(skill), token) {
				return true
			}
		}
	}
	return false
}
