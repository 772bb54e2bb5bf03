package booking

import "time"

// Reservation is the minimal view of a booking the capacity ledger needs.
type Reservation struct {
	Window TimeRange
	Status string
}

// OccupiedAt counts reservations holding a slot at the given instant.
func OccupiedAt(instant time.Time, reservations []Reservation) int {
	count := 0
	for _, r := range reservations {
		if HoldsSlot(r.Status) && r.Window.Contains(instant) {
			count++
		}
	}
	return count
}

// OccupiedOverlapping counts reservations holding a slot anywhere in the
// given window.
func OccupiedOverlapping(window TimeRange, reservations []Reservation) int {
	count := 0
	for _, r := range reservations {
		if HoldsSlot(r.Status) && r.Window.Overlaps(window) {
			count++
		}
	}
	return count
}

// FreeSlots clamps at zero so stale data can never report negative
// availability.
func FreeSlots(totalSlots, occupied int) int {
	free := totalSlots - occupied
	if free < 0 {
		return 0
	}
	return free
}
