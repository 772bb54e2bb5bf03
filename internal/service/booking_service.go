package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chargebook/internal/booking"
	"chargebook/internal/cache"
	"chargebook/internal/models"
)

// BookingService orchestrates availability checks and the booking
// lifecycle. It is the only component that mutates reservations and user
// balances, always through the store's atomic transactions.
type BookingService struct {
	stations StationStore
	bookings BookingStore
	users    UserStore
	cache    AvailabilityCache
	policy   booking.Policy
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService builds service. cache may be nil.
func NewBookingService(
	stations StationStore,
	bookings BookingStore,
	users UserStore,
	availCache AvailabilityCache,
	policy booking.Policy,
	logger *zap.Logger,
) *BookingService {
	if !policy.Valid() {
		policy = booking.PolicyRecompute
	}
	return &BookingService{
		stations: stations,
		bookings: bookings,
		users:    users,
		cache:    availCache,
		policy:   policy,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookingInput carries a booking request.
type CreateBookingInput struct {
	StationID    string `validate:"required"`
	UserID       string `validate:"required"`
	Start        time.Time
	End          time.Time
	VehicleType  string `validate:"required"`
	LicensePlate string
}

// CreateBooking validates the window, double-checks availability and
// balance, then hands the create transition to the store, which re-validates
// both at commit time. A failure leaves no partial state.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("booking: invalid input: %w", err)
	}
	window, err := booking.NewTimeRange(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	if !window.Start.After(s.now()) {
		return nil, booking.ErrInvalidWindow
	}

	station, err := s.stations.GetByID(ctx, input.StationID)
	if err != nil {
		return nil, err
	}
	if !station.IsActive {
		return nil, fmt.Errorf("station %s: %w", station.ID, booking.ErrNotFound)
	}

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	amount := station.PricePerHour.Mul(decimal.NewFromFloat(window.Hours()))
	if user.Balance.LessThan(amount) {
		return nil, booking.ErrInsufficientBalance
	}

	held, err := s.bookings.ListHeldForStation(ctx, station.ID)
	if err != nil {
		return nil, err
	}
	if !booking.IsAvailable(station.TotalSlots, window, reservations(held)) {
		return nil, booking.ErrSlotUnavailable
	}

	b := &models.Booking{
		ID:            uuid.NewString(),
		StationID:     station.ID,
		UserID:        user.ID,
		StartTime:     window.Start,
		EndTime:       window.End,
		DurationHours: window.Hours(),
		VehicleType:   strings.TrimSpace(input.VehicleType),
		LicensePlate:  strings.TrimSpace(input.LicensePlate),
		TotalAmount:   amount,
		Status:        booking.StatusPending,
		PaymentStatus: booking.PaymentPending,
	}

	if err := s.bookings.Create(ctx, b, s.policy); err != nil {
		return nil, err
	}
	s.invalidate(ctx, station.ID)

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("station_id", b.StationID),
		zap.String("user_id", b.UserID),
		zap.String("amount", b.TotalAmount.String()),
	)
	return b, nil
}

// CancelBooking cancels a booking owned by the requester and refunds the
// full amount. Cancelling a terminal booking fails with no effect.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID string) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != requesterID {
		return booking.ErrUnauthorized
	}
	if err := booking.CanCancel(b.Status); err != nil {
		return err
	}

	if err := s.bookings.Cancel(ctx, bookingID, s.policy); err != nil {
		return err
	}
	s.invalidate(ctx, b.StationID)

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("station_id", b.StationID),
		zap.String("refund", b.TotalAmount.String()),
	)
	return nil
}

// ConfirmBooking moves a pending booking owned by the requester to
// confirmed and marks it paid.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID, requesterID string) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != requesterID {
		return booking.ErrUnauthorized
	}
	if err := booking.CanConfirm(b.Status); err != nil {
		return err
	}

	if err := s.bookings.Confirm(ctx, bookingID); err != nil {
		return err
	}

	s.logger.Info("booking confirmed", zap.String("booking_id", bookingID))
	return nil
}

// CheckAvailability answers whether the station has a free slot over the
// window, plus how many, without creating anything.
func (s *BookingService) CheckAvailability(ctx context.Context, stationID string, start, end time.Time) (bool, int, error) {
	window, err := booking.NewTimeRange(start, end)
	if err != nil {
		return false, 0, err
	}
	station, err := s.stations.GetByID(ctx, stationID)
	if err != nil {
		return false, 0, err
	}
	held, err := s.bookings.ListHeldForStation(ctx, stationID)
	if err != nil {
		return false, 0, err
	}
	occupied := booking.OccupiedOverlapping(window, reservations(held))
	free := booking.FreeSlots(station.TotalSlots, occupied)
	return occupied < station.TotalSlots, free, nil
}

// ListUserBookings returns the requester's bookings with display statuses
// derived from the current instant.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, limit int) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range bookings {
		bookings[i].Status = booking.DerivedStatus(bookings[i].Status, bookings[i].Window(), now)
	}
	return bookings, nil
}

// FreeSlotsNow computes the station's current free-slot count, consulting
// the snapshot cache when one is configured.
func (s *BookingService) FreeSlotsNow(ctx context.Context, station *models.Station) (int, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, station.ID)
		if err != nil {
			s.logger.Warn("availability cache read failed", zap.String("station_id", station.ID), zap.Error(err))
		} else if snap != nil {
			return snap.FreeSlots, nil
		}
	}

	held, err := s.bookings.ListHeldForStation(ctx, station.ID)
	if err != nil {
		return 0, err
	}
	occupied := booking.OccupiedAt(s.now(), reservations(held))
	free := booking.FreeSlots(station.TotalSlots, occupied)

	if s.cache != nil {
		snap := cache.Snapshot{FreeSlots: free, TotalSlots: station.TotalSlots, ComputedAt: s.now()}
		if err := s.cache.Save(ctx, station.ID, snap); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("station_id", station.ID), zap.Error(err))
		}
	}
	return free, nil
}

func (s *BookingService) invalidate(ctx context.Context, stationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, stationID); err != nil {
		s.logger.Warn("availability cache invalidate failed", zap.String("station_id", stationID), zap.Error(err))
	}
}

func reservations(bookings []models.Booking) []booking.Reservation {
	out := make([]booking.Reservation, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookings[i].Reservation())
	}
	return out
}
