package booking

import "time"

// Persisted booking statuses. Active and completed are never written by
// this service: they are derived at display time from the window.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses. Payment confirmation is simulated as a flag.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// HoldsSlot reports whether a booking in the given status occupies a slot.
// Pending bookings hold a slot: an unpaid booking still blocks the slot
// during the payment-confirmation window.
func HoldsSlot(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusActive:
		return true
	default:
		return false
	}
}

// CanConfirm validates the pending -> confirmed transition.
func CanConfirm(status string) error {
	if status != StatusPending {
		return ErrInvalidState
	}
	return nil
}

// CanCancel validates cancellation. Terminal bookings stay terminal;
// cancelling twice fails rather than silently succeeding.
func CanCancel(status string) error {
	if status == StatusCompleted || status == StatusCancelled {
		return ErrInvalidState
	}
	return nil
}

// DerivedStatus maps a persisted status to the caller-visible one by
// comparing now against the window. Cancelled is final; a pending or
// confirmed booking shows as active inside its window and completed after.
func DerivedStatus(status string, window TimeRange, now time.Time) string {
	if status == StatusCancelled {
		return StatusCancelled
	}
	if now.After(window.End) {
		return StatusCompleted
	}
	if window.Contains(now) {
		return StatusActive
	}
	return status
}
