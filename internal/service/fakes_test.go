package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"chargebook/internal/booking"
	"chargebook/internal/models"
	"chargebook/internal/repository"
)

// memDB is an in-memory stand-in for the storage collaborator. Its booking
// store honors the BookingStore contract: create re-validates occupancy and
// balance before applying, and a failure leaves nothing mutated.
type memDB struct {
	mu       sync.Mutex
	stations map[string]*models.Station
	bookings map[string]*models.Booking
	users    map[string]*models.User
	nextID   int
}

func newMemDB() *memDB {
	return &memDB{
		stations: make(map[string]*models.Station),
		bookings: make(map[string]*models.Booking),
		users:    make(map[string]*models.User),
	}
}

func (db *memDB) id(prefix string) string {
	db.nextID++
	return fmt.Sprintf("%s-%d", prefix, db.nextID)
}

func (db *memDB) addUser(balance float64) *models.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	user := &models.User{
		ID:      db.id("user"),
		Email:   fmt.Sprintf("%s@example.com", db.id("mail")),
		Role:    models.RoleUser,
		Balance: decimal.NewFromFloat(balance),
	}
	db.users[user.ID] = user
	return user
}

func (db *memDB) addStation(totalSlots int, pricePerHour float64) *models.Station {
	db.mu.Lock()
	defer db.mu.Unlock()
	station := &models.Station{
		ID:             db.id("station"),
		Name:           "Test Station",
		Address:        "1 Main St",
		City:           "Springfield",
		ChargerType:    models.ChargerTypeFast,
		TotalSlots:     totalSlots,
		PricePerHour:   decimal.NewFromFloat(pricePerHour),
		IsActive:       true,
		AvailableSlots: totalSlots,
	}
	db.stations[station.ID] = station
	return station
}

func (db *memDB) balance(userID string) decimal.Decimal {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.users[userID].Balance
}

type fakeStationStore struct{ db *memDB }

func (s *fakeStationStore) Create(_ context.Context, station *models.Station) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if station.ID == "" {
		station.ID = s.db.id("station")
	}
	station.IsActive = true
	station.AvailableSlots = station.TotalSlots
	copied := *station
	s.db.stations[station.ID] = &copied
	return nil
}

func (s *fakeStationStore) GetByID(_ context.Context, id string) (*models.Station, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	station, ok := s.db.stations[id]
	if !ok {
		return nil, fmt.Errorf("station %s: %w", id, booking.ErrNotFound)
	}
	copied := *station
	return &copied, nil
}

func (s *fakeStationStore) ListActive(_ context.Context) ([]models.Station, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Station
	for _, station := range s.db.stations {
		if station.IsActive {
			out = append(out, *station)
		}
	}
	return out, nil
}

func (s *fakeStationStore) Update(_ context.Context, station *models.Station) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.stations[station.ID]
	if !ok {
		return fmt.Errorf("station %s: %w", station.ID, booking.ErrNotFound)
	}
	copied := *station
	copied.TotalSlots = existing.TotalSlots
	copied.AvailableSlots = existing.AvailableSlots
	s.db.stations[station.ID] = &copied
	return nil
}

func (s *fakeStationStore) SoftDelete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	station, ok := s.db.stations[id]
	if !ok {
		return fmt.Errorf("station %s: %w", id, booking.ErrNotFound)
	}
	station.IsActive = false
	return nil
}

type fakeBookingStore struct{ db *memDB }

func (s *fakeBookingStore) Create(_ context.Context, b *models.Booking, policy booking.Policy) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	station, ok := s.db.stations[b.StationID]
	if !ok || !station.IsActive {
		return fmt.Errorf("station %s: %w", b.StationID, booking.ErrNotFound)
	}

	switch policy {
	case booking.PolicyCounter:
		if station.AvailableSlots <= 0 {
			return booking.ErrSlotUnavailable
		}
	default:
		occupied := 0
		for _, other := range s.db.bookings {
			if other.StationID == b.StationID && booking.HoldsSlot(other.Status) && other.Window().Overlaps(b.Window()) {
				occupied++
			}
		}
		if occupied >= station.TotalSlots {
			return booking.ErrSlotUnavailable
		}
	}

	user, ok := s.db.users[b.UserID]
	if !ok {
		return fmt.Errorf("user %s: %w", b.UserID, booking.ErrNotFound)
	}
	if user.Balance.LessThan(b.TotalAmount) {
		return booking.ErrInsufficientBalance
	}

	if policy == booking.PolicyCounter {
		station.AvailableSlots--
	}
	user.Balance = user.Balance.Sub(b.TotalAmount)
	b.CreatedAt = time.Now().UTC()
	copied := *b
	s.db.bookings[b.ID] = &copied
	return nil
}

func (s *fakeBookingStore) Cancel(_ context.Context, bookingID string, policy booking.Policy) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s: %w", bookingID, booking.ErrNotFound)
	}
	if err := booking.CanCancel(b.Status); err != nil {
		return err
	}

	b.Status = booking.StatusCancelled
	now := time.Now().UTC()
	b.CancelledAt = &now
	s.db.users[b.UserID].Balance = s.db.users[b.UserID].Balance.Add(b.TotalAmount)

	if policy == booking.PolicyCounter {
		station := s.db.stations[b.StationID]
		if station.AvailableSlots < station.TotalSlots {
			station.AvailableSlots++
		}
	}
	return nil
}

func (s *fakeBookingStore) Confirm(_ context.Context, bookingID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	b, ok := s.db.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s: %w", bookingID, booking.ErrNotFound)
	}
	if err := booking.CanConfirm(b.Status); err != nil {
		return err
	}

	b.Status = booking.StatusConfirmed
	b.PaymentStatus = booking.PaymentPaid
	now := time.Now().UTC()
	b.ConfirmedAt = &now
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, booking.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (s *fakeBookingStore) ListHeldForStation(_ context.Context, stationID string) ([]models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Booking
	for _, b := range s.db.bookings {
		if b.StationID == stationID && booking.HoldsSlot(b.Status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListByUser(_ context.Context, userID string, limit int) ([]models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Booking
	for _, b := range s.db.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListForStation(_ context.Context, stationID string, limit int) ([]models.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Booking
	for _, b := range s.db.bookings {
		if b.StationID == stationID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeUserStore struct{ db *memDB }

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	if user.ID == "" {
		user.ID = s.db.id("user")
	}
	user.CreatedAt = time.Now().UTC()
	copied := *user
	s.db.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, user := range s.db.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	user, ok := s.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, booking.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}
