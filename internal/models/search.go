package models

import "time"

// SearchCriteria narrows the sitter listing. Zero values mean "not
// filtered"; StartDate/EndDate are applied only when both are set.
type SearchCriteria struct {
	ZipCode      string    `json:"zip_code"`
	PetType      string    `json:"pet_type"`
	ServiceTypes []string  `json:"service_types"`
	MinRating    float64   `json:"min_rating"`
	MaxPrice     float64   `json:"max_price"`
	Skills       []string  `json:"skills"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusKm     float64   `json:"radius_km"`
}

// HasDateRange reports whether the criteria carry a usable interval.
func (c SearchCriteria) HasDateRange() bool {
	return !c.StartDate.IsZero() && !c.EndDate.IsZero()
}
