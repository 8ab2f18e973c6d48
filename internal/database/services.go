package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pawsit/internal/models"
)

func (db *DB) CreateService(ctx context.Context, svc *models.Service) error {
	query := `INSERT INTO services (sitter_id, name, description, price, price_unit, pet_types_supported)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		svc.SitterID, svc.Name, svc.Description, svc.Price, svc.PriceUnit,
		encodeStrings(svc.PetTypesSupported),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	svc.ID = id
	return nil
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	query := `SELECT id, sitter_id, name, description, price, price_unit, pet_types_supported
              FROM services WHERE id = ?`

	var svc models.Service
	var petTypes string
	err := db.QueryRowContext(ctx, query, id).Scan(
		&svc.ID, &svc.SitterID, &svc.Name, &svc.Description, &svc.Price, &svc.PriceUnit, &petTypes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	svc.PetTypesSupported = decodeStrings(petTypes)
	return &svc, nil
}

func (db *DB) GetServicesBySitter(ctx context.Context, sitterID int64) ([]*models.Service, error) {
	query := `SELECT id, sitter_id, name, description, price, price_unit, pet_types_supported
              FROM services WHERE sitter_id = ? ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query, sitterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get services by sitter: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s := &models.Service{}
		var petTypes string
		err := rows.Scan(&s.ID, &s.SitterID, &s.Name, &s.Description, &s.Price, &s.PriceUnit, &petTypes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		s.PetTypesSupported = decodeStrings(petTypes)
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) UpdateService(ctx context.Context, svc *models.Service) error {
	query := `UPDATE services SET name = ?, description = ?, price = ?, price_unit = ?, pet_types_supported = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		svc.Name, svc.Description, svc.Price, svc.PriceUnit,
		encodeStrings(svc.PetTypesSupported), svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteService(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
