package models

import "time"

type PetOwner struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	CreatedAt time.Time `json:"created_at"`
}

type Pet struct {
	ID              int64  `json:"id"`
	OwnerID         int64  `json:"owner_id"`
	Name            string `json:"name"`
	Type            string `json:"type"` // "dog", "cat", "bird", ...
	Breed           string `json:"breed"`
	Age             int    `json:"age"`
	SpecialNeeds    string `json:"special_needs"`
	BehavioralNotes string `json:"behavioral_notes"`
}
