package service

import (
	"context"
	"testing"

	"pawsit/internal/cache"
	"pawsit/internal/database"
	"pawsit/internal/events"
	"pawsit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchService(t *testing.T, db *database.DB) (*SearchService, *ReviewService) {
	t.Helper()
	logger := zerolog.Nop()
	reviews := NewReviewService(db, cache.NewMemoryRatingCache(), events.NewEventBus(), &logger)
	return NewSearchService(db, reviews, &logger), reviews
}

func seedSearchSitter(t *testing.T, db *database.DB, name, zip string, lat, lng, rate float64, petTypes, skills []string) *models.PetSitter {
	t.Helper()
	sitter := &models.PetSitter{
		Email:            name + "@example.com",
		Name:             name,
		ZipCode:          zip,
		Latitude:         lat,
		Longitude:        lng,
		HourlyRate:       rate,
		PetTypesAccepted: petTypes,
		Skills:           skills,
	}
	require.NoError(t, db.CreatePetSitter(context.Background(), sitter))
	return sitter
}

func sitterNames(summaries []*models.SitterSummary) []string {
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	return names
}

func TestSearchByZipAndPetType(t *testing.T) {
	db := newTestStore(t)
	svc, _ := newSearchService(t, db)
	ctx := context.Background()

	seedSearchSitter(t, db, "alice", "94114", 0, 0, 25, []string{"Dog", "cat"}, nil)
	seedSearchSitter(t, db, "bob", "94114", 0, 0, 30, []string{"cat"}, nil)
	seedSearchSitter(t, db, "carol", "10001", 0, 0, 20, []string{"dog"}, nil)

	results, err := svc.Search(ctx, models.SearchCriteria{ZipCode: "94114", PetType: "dog"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, sitterNames(results))

	// Empty criteria returns everyone.
	results, err = svc.Search(ctx, models.SearchCriteria{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchByServices(t *testing.T) {
	db := newTestStore(t)
	svc, _ := newSearchService(t, db)
	ctx := context.Background()

	alice := seedSearchSitter(t, db, "alice", "94114", 0, 0, 25, nil, nil)
	bob := seedSearchSitter(t, db, "bob", "94114", 0, 0, 30, nil, nil)

	require.NoError(t, db.CreateService(ctx, &models.Service{SitterID: alice.ID, Name: "Walking", Price: 20}))
	require.NoError(t, db.CreateService(ctx, &models.Service{SitterID: alice.ID, Name: "overnight", Price: 80}))
	require.NoError(t, db.CreateService(ctx, &models.Service{SitterID: bob.ID, Name: "walking", Price: 18}))

	// All requested services must be offered, case-insensitive.
	results, err := svc.Search(ctx, models.SearchCriteria{ServiceTypes: []string{"walking", "OVERNIGHT"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, sitterNames(results))

	results, err = svc.Search(ctx, models.SearchCriteria{ServiceTypes: []string{"walking"}})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchByRatingAndPrice(t *testing.T) {
	db := newTestStore(t)
	svc, reviews := newSearchService(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	alice := seedSearchSitter(t, db, "alice", "94114", 0, 0, 25, nil, nil)
	seedSearchSitter(t, db, "bob", "94114", 0, 0, 60, nil, nil)

	booking := seedCompletedBooking(t, db, owner.ID, alice.ID, futureDay(1))
	_, err := reviews.CreateReview(ctx, booking.ID, 5, "fantastic")
	require.NoError(t, err)

	results, err := svc.Search(ctx, models.SearchCriteria{MinRating: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, sitterNames(results))

	results, err = svc.Search(ctx, models.SearchCriteria{MaxPrice: 30})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, sitterNames(results))

	results, err = svc.Search(ctx, models.SearchCriteria{MinRating: 4, MaxPrice: 20})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchBySkills(t *testing.T) {
	db := newTestStore(t)
	svc, _ := newSearchService(t, db)
	ctx := context.Background()

	seedSearchSitter(t, db, "alice", "94114", 0, 0, 25, nil, []string{"Medication Administration", "senior pet care"})
	seedSearchSitter(t, db, "bob", "94114", 0, 0, 30, nil, []string{"large breeds"})

	// Substring match, any of the requested tokens.
	results, err := svc.Search(ctx, models.SearchCriteria{Skills: []string{"medication"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, sitterNames(results))

	results, err = svc.Search(ctx, models.SearchCriteria{Skills: []string{"medication", "breeds"}})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchByRadius(t *testing.T) {
	db := newTestStore(t)
	svc, _ := newSearchService(t, db)
	ctx := context.Background()

	// Mission District vs downtown Los Angeles.
	seedSearchSitter(t, db, "near", "94110", 37.7583, -122.4267, 25, nil, nil)
	seedSearchSitter(t, db, "far", "90012", 34.0537, -118.2428, 25, nil, nil)

	results, err := svc.Search(ctx, models.SearchCriteria{
		Latitude: 37.7609, Longitude: -122.4350, RadiusKm: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"near"}, sitterNames(results))
}

func TestSearchByDateRange(t *testing.T) {
	db := newTestStore(t)
	svc, _ := newSearchService(t, db)
	owner := seedTestOwner(t, db)
	ctx := context.Background()

	blocked := seedSearchSitter(t, db, "blocked", "94114", 0, 0, 25, nil, nil)
	booked := seedSearchSitter(t, db, "booked", "94114", 0, 0, 25, nil, nil)
	seedSearchSitter(t, db, "free", "94114", 0, 0, 25, nil, nil)

	require.NoError(t, db.CreateAvailability(ctx, &models.Availability{
		SitterID: blocked.ID, StartDate: futureDay(1), EndDate: futureDay(10), IsAvailable: false,
	}))

	accepted := makeBooking(owner.ID, booked.ID, futureDay(3), futureDay(6))
	accepted.Status = models.StatusAccepted
	require.NoError(t, db.CreateBooking(ctx, accepted))

	results, err := svc.Search(ctx, models.SearchCriteria{
		StartDate: futureDay(4), EndDate: futureDay(5),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"free"}, sitterNames(results))

	// Outside the blocked and booked windows everyone is free.
	results, err = svc.Search(ctx, models.SearchCriteria{
		StartDate: futureDay(20), EndDate: futureDay(22),
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}
