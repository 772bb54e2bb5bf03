package service

import (
	"context"

	"chargebook/internal/booking"
	"chargebook/internal/cache"
	"chargebook/internal/models"
)

// StationStore defines station persistence used by services.
type StationStore interface {
	Create(ctx context.Context, station *models.Station) error
	GetByID(ctx context.Context, id string) (*models.Station, error)
	ListActive(ctx context.Context) ([]models.Station, error)
	Update(ctx context.Context, station *models.Station) error
	SoftDelete(ctx context.Context, id string) error
}

// BookingStore defines booking persistence. Create and Cancel are atomic:
// the reservation write and the balance mutation (and the capacity counter
// under the counter policy) commit together or not at all, with occupancy
// re-validated at commit time.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking, policy booking.Policy) error
	Cancel(ctx context.Context, bookingID string, policy booking.Policy) error
	Confirm(ctx context.Context, bookingID string) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListHeldForStation(ctx context.Context, stationID string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Booking, error)
	ListForStation(ctx context.Context, stationID string, limit int) ([]models.Booking, error)
}

// UserStore defines user lookup used by services.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AvailabilityCache is the optional snapshot cache serving the read path.
type AvailabilityCache interface {
	Get(ctx context.Context, stationID string) (*cache.Snapshot, error)
	Save(ctx context.Context, stationID string, snap cache.Snapshot) error
	Invalidate(ctx context.Context, stationID string) error
}
