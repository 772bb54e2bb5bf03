package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charger types offered at a station.
const (
	ChargerTypeFast   = "fast"
	ChargerTypeNormal = "normal"
	ChargerTypeBoth   = "both"
)

// ValidChargerType reports whether t names a known charger type.
func ValidChargerType(t string) bool {
	switch t {
	case ChargerTypeFast, ChargerTypeNormal, ChargerTypeBoth:
		return true
	default:
		return false
	}
}

// Station is a charging station listed on the marketplace. Capacity is
// immutable once created; AvailableSlots is only maintained under the
// counter availability policy and is otherwise a derived quantity.
type Station struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Address        string          `db:"address" json:"address"`
	City           string          `db:"city" json:"city"`
	State          string          `db:"state" json:"state"`
	Zip            string          `db:"zip" json:"zip"`
	ContactNumber  string          `db:"contact_number" json:"contact_number"`
	ChargerType    string          `db:"charger_type" json:"charger_type"`
	TotalSlots     int             `db:"total_slots" json:"total_slots"`
	PricePerHour   decimal.Decimal `db:"price_per_hour" json:"price_per_hour"`
	Description    string          `db:"description" json:"description,omitempty"`
	ImageURL       string          `db:"image_url" json:"image_url,omitempty"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	AvailableSlots int             `db:"available_slots" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// StationSnapshot is a full-replacement availability view delivered to
// live subscribers.
type StationSnapshot struct {
	StationID    string          `json:"station_id"`
	Name         string          `json:"name"`
	ChargerType  string          `json:"charger_type"`
	PricePerHour decimal.Decimal `json:"price_per_hour"`
	FreeSlots    int             `json:"free_slots"`
	TotalSlots   int             `json:"total_slots"`
}
