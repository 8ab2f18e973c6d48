package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/models"
)

func (db *DB) CreatePetOwner(ctx context.Context, owner *models.PetOwner) error {
	query := `INSERT INTO pet_owners (email, name, phone, address, city, state, zip_code, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		owner.Email, owner.Name, owner.Phone, owner.Address, owner.City, owner.State, owner.ZipCode, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet owner: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	owner.ID = id
	owner.CreatedAt = now
	return nil
}

func (db *DB) GetPetOwner(ctx context.Context, id int64) (*models.PetOwner, error) {
	query := `SELECT id, email, name, phone, address, city, state, zip_code, created_at
              FROM pet_owners WHERE id = ?`

	var owner models.PetOwner
	err := db.QueryRowContext(ctx, query, id).Scan(
		&owner.ID, &owner.Email, &owner.Name, &owner.Phone,
		&owner.Address, &owner.City, &owner.State, &owner.ZipCode, &owner.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet owner: %w", err)
	}
	return &owner, nil
}

func (db *DB) DeletePetOwner(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM pet_owners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet owner: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) CreatePet(ctx context.Context, pet *models.Pet) error {
	query := `INSERT INTO pets (owner_id, name, type, breed, age, special_needs, behavioral_notes)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		pet.OwnerID, pet.Name, pet.Type, pet.Breed, pet.Age, pet.SpecialNeeds, pet.BehavioralNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	pet.ID = id
	return nil
}

func (db *DB) GetPet(ctx context.Context, id int64) (*models.Pet, error) {
	query := `SELECT id, owner_id, name, type, breed, age, special_needs, behavioral_notes
              FROM pets WHERE id = ?`

	var pet models.Pet
	err := db.QueryRowContext(ctx, query, id).Scan(
		&pet.ID, &pet.OwnerID, &pet.Name, &pet.Type, &pet.Breed, &pet.Age,
		&pet.SpecialNeeds, &pet.BehavioralNotes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

func (db *DB) GetPetsByOwner(ctx context.Context, ownerID int64) ([]*models.Pet, error) {
	query := `SELECT id, owner_id, name, type, breed, age, special_needs, behavioral_notes
              FROM pets WHERE owner_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pets by owner: %w", err)
	}
	defer rows.Close()

	var pets []*models.Pet
	for rows.Next() {
		p := &models.Pet{}
		err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Breed, &p.Age,
			&p.SpecialNeeds, &p.BehavioralNotes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}

func (db *DB) UpdatePet(ctx context.Context, pet *models.Pet) error {
	query := `UPDATE pets SET name = ?, type = ?, breed = ?, age = ?, special_needs = ?, behavioral_notes = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		pet.Name, pet.Type, pet.Breed, pet.Age, pet.SpecialNeeds, pet.BehavioralNotes, pet.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeletePet(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM pets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
