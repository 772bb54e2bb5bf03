package models

import (
	"time"

	"github.com/shopspring/decimal"

	"chargebook/internal/booking"
)

// Booking is a time-ranged reservation of one charging slot.
type Booking struct {
	ID            string          `db:"id" json:"id"`
	StationID     string          `db:"station_id" json:"station_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	StartTime     time.Time       `db:"start_time" json:"start_time"`
	EndTime       time.Time       `db:"end_time" json:"end_time"`
	DurationHours float64         `db:"duration_hours" json:"duration_hours"`
	VehicleType   string          `db:"vehicle_type" json:"vehicle_type"`
	LicensePlate  string          `db:"license_plate" json:"license_plate,omitempty"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status        string          `db:"status" json:"status"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	ConfirmedAt   *time.Time      `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time      `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// Window returns the booking interval as a TimeRange.
func (b *Booking) Window() booking.TimeRange {
	return booking.TimeRange{Start: b.StartTime, End: b.EndTime}
}

// Reservation projects the booking into the capacity ledger's view.
func (b *Booking) Reservation() booking.Reservation {
	return booking.Reservation{Window: b.Window(), Status: b.Status}
}
