package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chargebook/internal/booking"
	"chargebook/internal/models"
)

// BookingRepository handles persistence of bookings plus the balance and
// capacity mutations that must commit with them. It is the only writer of
// user balances.
type BookingRepository struct {
	db *sql.DB
}

// NewBookingRepository returns repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create persists a new pending booking and debits the user's balance as
// one transaction. The station row is locked and occupancy re-validated at
// commit time, so two concurrent creates cannot both claim the last slot:
// whichever transaction takes the lock second sees the first one's insert.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking, policy booking.Policy) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", booking.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	const lockStation = `
		SELECT total_slots, is_active
		FROM stations
		WHERE id = $1
		FOR UPDATE
	`
	var totalSlots int
	var isActive bool
	if err := tx.QueryRowContext(ctx, lockStation, b.StationID).Scan(&totalSlots, &isActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("station %s: %w", b.StationID, booking.ErrNotFound)
		}
		return fmt.Errorf("%w: lock station: %v", booking.ErrStorageFailure, err)
	}
	if !isActive {
		return fmt.Errorf("station %s: %w", b.StationID, booking.ErrNotFound)
	}

	switch policy {
	case booking.PolicyCounter:
		const decrement = `
			UPDATE stations
			SET available_slots = available_slots - 1,
			    updated_at = NOW()
			WHERE id = $1 AND available_slots > 0
		`
		result, err := tx.ExecContext(ctx, decrement, b.StationID)
		if err != nil {
			return fmt.Errorf("%w: decrement counter: %v", booking.ErrStorageFailure, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: decrement counter: %v", booking.ErrStorageFailure, err)
		}
		if affected == 0 {
			return booking.ErrSlotUnavailable
		}
	default:
		const countOverlapping = `
			SELECT COUNT(*)
			FROM bookings
			WHERE station_id = $1
			  AND status IN ('pending', 'confirmed', 'active')
			  AND start_time < $3
			  AND end_time > $2
		`
		var occupied int
		if err := tx.QueryRowContext(ctx, countOverlapping, b.StationID, b.StartTime, b.EndTime).Scan(&occupied); err != nil {
			return fmt.Errorf("%w: count occupancy: %v", booking.ErrStorageFailure, err)
		}
		if occupied >= totalSlots {
			return booking.ErrSlotUnavailable
		}
	}

	const debit = `
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1 AND balance >= $2
	`
	result, err := tx.ExecContext(ctx, debit, b.UserID, b.TotalAmount)
	if err != nil {
		return fmt.Errorf("%w: debit balance: %v", booking.ErrStorageFailure, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: debit balance: %v", booking.ErrStorageFailure, err)
	}
	if affected == 0 {
		return booking.ErrInsufficientBalance
	}

	const insert = `
		INSERT INTO bookings (id, station_id, user_id, start_time, end_time, duration_hours,
			vehicle_type, license_plate, total_amount, status, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, insert,
		b.ID,
		b.StationID,
		b.UserID,
		b.StartTime,
		b.EndTime,
		b.DurationHours,
		b.VehicleType,
		b.LicensePlate,
		b.TotalAmount,
		b.Status,
		b.PaymentStatus,
	).Scan(&b.CreatedAt); err != nil {
		return fmt.Errorf("%w: insert booking: %v", booking.ErrStorageFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", booking.ErrStorageFailure, err)
	}
	return nil
}

// Cancel marks a non-terminal booking cancelled and refunds the full
// amount, atomically. Under the counter policy the held slot is released
// in the same transaction. The state check runs under a row lock so
// cancelling twice credits the refund exactly once.
func (r *BookingRepository) Cancel(ctx context.Context, bookingID string, policy booking.Policy) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", booking.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	b, err := lockBooking(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if err := booking.CanCancel(b.Status); err != nil {
		return err
	}

	const cancel = `
		UPDATE bookings
		SET status = 'cancelled',
		    cancelled_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, cancel, bookingID); err != nil {
		return fmt.Errorf("%w: cancel booking: %v", booking.ErrStorageFailure, err)
	}

	const refund = `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, refund, b.UserID, b.TotalAmount); err != nil {
		return fmt.Errorf("%w: refund balance: %v", booking.ErrStorageFailure, err)
	}

	if policy == booking.PolicyCounter {
		const release = `
			UPDATE stations
			SET available_slots = LEAST(available_slots + 1, total_slots),
			    updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, release, b.StationID); err != nil {
			return fmt.Errorf("%w: release counter: %v", booking.ErrStorageFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", booking.ErrStorageFailure, err)
	}
	return nil
}

// Confirm moves a pending booking to confirmed and marks it paid.
func (r *BookingRepository) Confirm(ctx context.Context, bookingID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", booking.ErrStorageFailure, err)
	}
	defer tx.Rollback()

	b, err := lockBooking(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if err := booking.CanConfirm(b.Status); err != nil {
		return err
	}

	const confirm = `
		UPDATE bookings
		SET status = 'confirmed',
		    payment_status = 'paid',
		    confirmed_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, confirm, bookingID); err != nil {
		return fmt.Errorf("%w: confirm booking: %v", booking.ErrStorageFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", booking.ErrStorageFailure, err)
	}
	return nil
}

func lockBooking(ctx context.Context, tx *sql.Tx, bookingID string) (*models.Booking, error) {
	const query = `
		SELECT id, station_id, user_id, status, total_amount
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`
	var b models.Booking
	err := tx.QueryRowContext(ctx, query, bookingID).Scan(&b.ID, &b.StationID, &b.UserID, &b.Status, &b.TotalAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", bookingID, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: lock booking: %v", booking.ErrStorageFailure, err)
	}
	return &b, nil
}

const bookingColumns = `id, station_id, user_id, start_time, end_time, duration_hours,
		vehicle_type, license_plate, total_amount, status, payment_status, created_at, confirmed_at, cancelled_at`

// GetByID fetches a single booking.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get booking: %v", booking.ErrStorageFailure, err)
	}
	return b, nil
}

// ListHeldForStation returns the bookings currently holding a slot at the
// station; the live reservation set availability checks run against.
func (r *BookingRepository) ListHeldForStation(ctx context.Context, stationID string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE station_id = $1
		  AND status IN ('pending', 'confirmed', 'active')
		ORDER BY start_time
	`
	return r.list(ctx, query, stationID)
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

// ListForStation returns a station's bookings in every status, newest
// first. Admin view.
func (r *BookingRepository) ListForStation(ctx context.Context, stationID string, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE station_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, stationID, limit)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", booking.ErrStorageFailure, err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan booking: %v", booking.ErrStorageFailure, err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", booking.ErrStorageFailure, err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var confirmedAt, cancelledAt sql.NullTime
	err := row.Scan(
		&b.ID,
		&b.StationID,
		&b.UserID,
		&b.StartTime,
		&b.EndTime,
		&b.DurationHours,
		&b.VehicleType,
		&b.LicensePlate,
		&b.TotalAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.CreatedAt,
		&confirmedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	return &b, nil
}
