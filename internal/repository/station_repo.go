package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"chargebook/internal/booking"
	"chargebook/internal/models"
)

// StationRepository handles persistence of charging stations.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a new station. Available slots start equal to capacity.
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	if station.ID == "" {
		station.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO stations (id, name, address, city, state, zip, contact_number, charger_type,
			total_slots, price_per_hour, description, image_url, is_active, available_slots, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		station.ID,
		station.Name,
		station.Address,
		station.City,
		station.State,
		station.Zip,
		station.ContactNumber,
		station.ChargerType,
		station.TotalSlots,
		station.PricePerHour,
		station.Description,
		station.ImageURL,
	).Scan(&station.CreatedAt, &station.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: create station: %v", booking.ErrStorageFailure, err)
	}
	station.IsActive = true
	station.AvailableSlots = station.TotalSlots
	return nil
}

// GetByID fetches a station regardless of active flag.
func (r *StationRepository) GetByID(ctx context.Context, id string) (*models.Station, error) {
	const query = `
		SELECT id, name, address, city, state, zip, contact_number, charger_type,
			total_slots, price_per_hour, description, image_url, is_active, available_slots, created_at, updated_at
		FROM stations
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	station, err := scanStation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("station %s: %w", id, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get station: %v", booking.ErrStorageFailure, err)
	}
	return station, nil
}

// ListActive returns all active stations.
func (r *StationRepository) ListActive(ctx context.Context) ([]models.Station, error) {
	const query = `
		SELECT id, name, address, city, state, zip, contact_number, charger_type,
			total_slots, price_per_hour, description, image_url, is_active, available_slots, created_at, updated_at
		FROM stations
		WHERE is_active = TRUE
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list stations: %v", booking.ErrStorageFailure, err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan station: %v", booking.ErrStorageFailure, err)
		}
		stations = append(stations, *station)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list stations: %v", booking.ErrStorageFailure, err)
	}
	return stations, nil
}

// Update rewrites display fields. Capacity is immutable once created and
// is deliberately absent from the statement.
func (r *StationRepository) Update(ctx context.Context, station *models.Station) error {
	const query = `
		UPDATE stations
		SET name = $2,
		    address = $3,
		    city = $4,
		    state = $5,
		    zip = $6,
		    contact_number = $7,
		    charger_type = $8,
		    price_per_hour = $9,
		    description = $10,
		    image_url = $11,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		station.ID,
		station.Name,
		station.Address,
		station.City,
		station.State,
		station.Zip,
		station.ContactNumber,
		station.ChargerType,
		station.PricePerHour,
		station.Description,
		station.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("%w: update station: %v", booking.ErrStorageFailure, err)
	}
	return requireRow(result, station.ID)
}

// SoftDelete deactivates a station; rows are never hard-deleted.
func (r *StationRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE stations
		SET is_active = FALSE,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: delete station: %v", booking.ErrStorageFailure, err)
	}
	return requireRow(result, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStation(row rowScanner) (*models.Station, error) {
	var s models.Station
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Address,
		&s.City,
		&s.State,
		&s.Zip,
		&s.ContactNumber,
		&s.ChargerType,
		&s.TotalSlots,
		&s.PricePerHour,
		&s.Description,
		&s.ImageURL,
		&s.IsActive,
		&s.AvailableSlots,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", booking.ErrStorageFailure, err)
	}
	if affected == 0 {
		return fmt.Errorf("station %s: %w", id, booking.ErrNotFound)
	}
	return nil
}
