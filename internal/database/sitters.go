package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pawsit/internal/models"
)

const sitterColumns = `id, email, name, phone, bio, address, city, state, zip_code,
       latitude, longitude, hourly_rate, photos, pet_types_accepted, skills,
       profile_completeness, created_at, updated_at`

func scanSitter(row interface{ Scan(...any) error }) (*models.PetSitter, error) {
	var s models.PetSitter
	var photos, petTypes, skills string
	err := row.Scan(
		&s.ID, &s.Email, &s.Name, &s.Phone, &s.Bio, &s.Address, &s.City, &s.State, &s.ZipCode,
		&s.Latitude, &s.Longitude, &s.HourlyRate, &photos, &petTypes, &skills,
		&s.ProfileCompleteness, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Photos = decodeStrings(photos)
	s.PetTypesAccepted = decodeStrings(petTypes)
	s.Skills = decodeStrings(skills)
	return &s, nil
}

func (db *DB) CreatePetSitter(ctx context.Context, sitter *models.PetSitter) error {
	query := `INSERT INTO pet_sitters (
                email, name, phone, bio, address, city, state, zip_code,
                latitude, longitude, hourly_rate, photos, pet_types_accepted, skills,
                profile_completeness, created_at, updated_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		sitter.Email, sitter.Name, sitter.Phone, sitter.Bio, sitter.Address,
		sitter.City, sitter.State, sitter.ZipCode,
		sitter.Latitude, sitter.Longitude, sitter.HourlyRate,
		encodeStrings(sitter.Photos), encodeStrings(sitter.PetTypesAccepted), encodeStrings(sitter.Skills),
		sitter.ProfileCompleteness, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet sitter: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	sitter.ID = id
	sitter.CreatedAt = now
	sitter.UpdatedAt = now
	return nil
}

func (db *DB) GetPetSitter(ctx context.Context, id int64) (*models.PetSitter, error) {
	query := `SELECT ` + sitterColumns + ` FROM pet_sitters WHERE id = ?`
	sitter, err := scanSitter(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet sitter: %w", err)
	}
	return sitter, nil
}

func (db *DB) GetAllPetSitters(ctx context.Context) ([]*models.PetSitter, error) {
	query := `SELECT ` + sitterColumns + ` FROM pet_sitters ORDER BY id ASC`
	return db.querySitters(ctx, query)
}

func (db *DB) GetPetSittersByZipCode(ctx context.Context, zipCode string) ([]*models.PetSitter, error) {
	query := `SELECT ` + sitterColumns + ` FROM pet_sitters WHERE zip_code = ? ORDER BY id ASC`
	return db.querySitters(ctx, query, zipCode)
}

func (db *DB) querySitters(ctx context.Context, query string, args ...any) ([]*models.PetSitter, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pet sitters: %w", err)
	}
	defer rows.Close()

	var sitters []*models.PetSitter
	for rows.Next() {
		s, err := scanSitter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet sitter: %w", err)
		}
		sitters = append(sitters, s)
	}
	return sitters, rows.Err()
}

// UpdatePetSitter replaces all mutable profile columns.
func (db *DB) UpdatePetSitter(ctx context.Context, sitter *models.PetSitter) error {
	query := `UPDATE pet_sitters SET
                email = ?, name = ?, phone = ?, bio = ?, address = ?, city = ?, state = ?, zip_code = ?,
                latitude = ?, longitude = ?, hourly_rate = ?, photos = ?, pet_types_accepted = ?, skills = ?,
                profile_completeness = ?, updated_at = ?
              WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		sitter.Email, sitter.Name, sitter.Phone, sitter.Bio, sitter.Address,
		sitter.City, sitter.State, sitter.ZipCode,
		sitter.Latitude, sitter.Longitude, sitter.HourlyRate,
		encodeStrings(sitter.Photos), encodeStrings(sitter.PetTypesAccepted), encodeStrings(sitter.Skills),
		sitter.ProfileCompleteness, now, sitter.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pet sitter: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	sitter.UpdatedAt = now
	return nil
}

func (db *DB) DeletePetSitter(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM pet_sitters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet sitter: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
