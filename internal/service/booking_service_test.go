package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chargebook/internal/booking"
	"chargebook/internal/models"
)

// testNow is the frozen instant every scenario runs at: 09:00 on a fixed day.
var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	db      *memDB
	svc     *BookingService
	station *models.Station
	user    *models.User
}

func newFixture(t *testing.T, policy booking.Policy) *fixture {
	t.Helper()
	db := newMemDB()
	svc := NewBookingService(
		&fakeStationStore{db: db},
		&fakeBookingStore{db: db},
		&fakeUserStore{db: db},
		nil,
		policy,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return testNow }
	return &fixture{
		db:      db,
		svc:     svc,
		station: db.addStation(1, 10),
		user:    db.addUser(50),
	}
}

func (f *fixture) create(t *testing.T, startHour, endHour int) (*models.Booking, error) {
	t.Helper()
	return f.svc.CreateBooking(context.Background(), CreateBookingInput{
		StationID:   f.station.ID,
		UserID:      f.user.ID,
		Start:       at(startHour),
		End:         at(endHour),
		VehicleType: "sedan",
	})
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if b.Status != booking.StatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.PaymentStatus != booking.PaymentPending {
		t.Errorf("payment status = %s, want pending", b.PaymentStatus)
	}
	if !b.TotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("total amount = %s, want 20", b.TotalAmount)
	}
	if b.DurationHours != 2 {
		t.Errorf("duration hours = %v, want 2", b.DurationHours)
	}
	if got := f.db.balance(f.user.ID); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("balance = %s, want 30", got)
	}
}

func TestCreateBookingOverlappingWindowUnavailable(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	if _, err := f.create(t, 10, 12); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := f.create(t, 11, 13)
	if !errors.Is(err, booking.ErrSlotUnavailable) {
		t.Fatalf("overlapping booking: got %v, want ErrSlotUnavailable", err)
	}
	if got := f.db.balance(f.user.ID); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("failed booking mutated balance: %s", got)
	}
}

func TestCreateBookingDisjointWindowSucceeds(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	if _, err := f.create(t, 10, 12); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.create(t, 13, 14); err != nil {
		t.Fatalf("disjoint booking should succeed: %v", err)
	}
}

func TestCreateBookingPastWindowRejected(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	_, err := f.create(t, 8, 9) // before testNow
	if !errors.Is(err, booking.ErrInvalidWindow) {
		t.Fatalf("past window: got %v, want ErrInvalidWindow", err)
	}
	if got := f.db.balance(f.user.ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("rejected booking mutated balance: %s", got)
	}
	if held, _ := f.svc.bookings.ListHeldForStation(context.Background(), f.station.ID); len(held) != 0 {
		t.Errorf("rejected booking persisted a reservation")
	}
}

func TestCreateBookingInvalidRange(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	_, err := f.create(t, 12, 12)
	if !errors.Is(err, booking.ErrInvalidRange) {
		t.Fatalf("empty window: got %v, want ErrInvalidRange", err)
	}
}

func TestCreateBookingInsufficientBalance(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	_, err := f.create(t, 10, 16) // 6h * 10 = 60 > 50
	if !errors.Is(err, booking.ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if held, _ := f.svc.bookings.ListHeldForStation(context.Background(), f.station.ID); len(held) != 0 {
		t.Errorf("failed booking changed occupancy")
	}
	if got := f.db.balance(f.user.ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("failed booking mutated balance: %s", got)
	}
}

func TestCancelBookingRefundsOnce(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := f.svc.CancelBooking(context.Background(), b.ID, f.user.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if got := f.db.balance(f.user.ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance after refund = %s, want 50", got)
	}

	err = f.svc.CancelBooking(context.Background(), b.ID, f.user.ID)
	if !errors.Is(err, booking.ErrInvalidState) {
		t.Fatalf("second cancel: got %v, want ErrInvalidState", err)
	}
	if got := f.db.balance(f.user.ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("second cancel credited again: %s", got)
	}
}

func TestCreateCancelRoundTrip(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	before := f.db.balance(f.user.ID)
	_, freeBefore, err := f.svc.CheckAvailability(context.Background(), f.station.ID, at(10), at(12))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := f.svc.CancelBooking(context.Background(), b.ID, f.user.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	if got := f.db.balance(f.user.ID); !got.Equal(before) {
		t.Errorf("balance = %s, want %s", got, before)
	}
	_, freeAfter, err := f.svc.CheckAvailability(context.Background(), f.station.ID, at(10), at(12))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if freeAfter != freeBefore {
		t.Errorf("free slots = %d, want %d", freeAfter, freeBefore)
	}
}

func TestCancelBookingRequiresOwnership(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)
	stranger := f.db.addUser(100)

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	err = f.svc.CancelBooking(context.Background(), b.ID, stranger.ID)
	if !errors.Is(err, booking.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestCancelBookingNotFound(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	err := f.svc.CancelBooking(context.Background(), "missing", f.user.ID)
	if !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := f.svc.ConfirmBooking(context.Background(), b.ID, f.user.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	confirmed, err := f.svc.bookings.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if confirmed.Status != booking.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if confirmed.PaymentStatus != booking.PaymentPaid {
		t.Errorf("payment status = %s, want paid", confirmed.PaymentStatus)
	}

	err = f.svc.ConfirmBooking(context.Background(), b.ID, f.user.ID)
	if !errors.Is(err, booking.ErrInvalidState) {
		t.Fatalf("second confirm: got %v, want ErrInvalidState", err)
	}
}

func TestCounterPolicyGatesOnCounter(t *testing.T) {
	f := newFixture(t, booking.PolicyCounter)

	if _, err := f.create(t, 10, 12); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// The counter gate is instant-based: with the single slot held, even a
	// disjoint window is refused until the hold is released.
	_, err := f.create(t, 13, 14)
	if !errors.Is(err, booking.ErrSlotUnavailable) {
		t.Fatalf("got %v, want ErrSlotUnavailable", err)
	}
}

func TestCounterPolicyReleasesOnCancel(t *testing.T) {
	f := newFixture(t, booking.PolicyCounter)

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if err := f.svc.CancelBooking(context.Background(), b.ID, f.user.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	if _, err := f.create(t, 13, 14); err != nil {
		t.Fatalf("booking after release: %v", err)
	}
}

func TestListUserBookingsDerivesDisplayStatus(t *testing.T) {
	f := newFixture(t, booking.PolicyRecompute)

	b, err := f.create(t, 10, 12)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// Move the clock inside the window.
	f.svc.now = func() time.Time { return at(11) }
	listed, err := f.svc.ListUserBookings(context.Background(), f.user.ID, 10)
	if err != nil {
		t.Fatalf("ListUserBookings: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != b.ID {
		t.Fatalf("unexpected listing: %+v", listed)
	}
	if listed[0].Status != booking.StatusActive {
		t.Errorf("status = %s, want derived active", listed[0].Status)
	}

	// Persisted status is untouched by the derivation.
	stored, _ := f.svc.bookings.GetByID(context.Background(), b.ID)
	if stored.Status != booking.StatusPending {
		t.Errorf("stored status = %s, want pending", stored.Status)
	}
}
