package models

import "time"

type PetSitter struct {
	ID                  int64     `json:"id" yaml:"id"`
	Email               string    `json:"email" yaml:"email"`
	Name                string    `json:"name" yaml:"name"`
	Phone               string    `json:"phone" yaml:"phone"`
	Bio                 string    `json:"bio" yaml:"bio"`
	Address             string    `json:"address" yaml:"address"`
	City                string    `json:"city" yaml:"city"`
	State               string    `json:"state" yaml:"state"`
	ZipCode             string    `json:"zip_code" yaml:"zip_code"`
	Latitude            float64   `json:"latitude" yaml:"latitude"`
	Longitude           float64   `json:"longitude" yaml:"longitude"`
	HourlyRate          float64   `json:"hourly_rate" yaml:"hourly_rate"`
	Photos              []string  `json:"photos" yaml:"photos"`
	PetTypesAccepted    []string  `json:"pet_types_accepted" yaml:"pet_types_accepted"`
	Skills              []string  `json:"skills" yaml:"skills"`
	ProfileCompleteness int       `json:"profile_completeness" yaml:"profile_completeness"` // 0-100
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" yaml:"updated_at"`
}

type Service struct {
	ID                int64    `json:"id" yaml:"id"`
	SitterID          int64    `json:"sitter_id" yaml:"sitter_id"`
	Name              string   `json:"name" yaml:"name"` // free-text category: "overnight", "walking", ...
	Description       string   `json:"description" yaml:"description"`
	Price             float64  `json:"price" yaml:"price"`
	PriceUnit         string   `json:"price_unit" yaml:"price_unit"` // "per hour", "per day", "flat rate"
	PetTypesSupported []string `json:"pet_types_supported" yaml:"pet_types_supported"`
}

// SitterSummary is what search results and sitter listings return: the
// profile plus denormalized review figures.
type SitterSummary struct {
	PetSitter
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}
