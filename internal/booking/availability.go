package booking

// Policy selects how availability is enforced at commit time. Exactly one
// policy is active per deployment; they disagree under concurrent load and
// must never coexist.
type Policy string

const (
	// PolicyRecompute re-counts overlapping reservations inside the
	// booking transaction. Strongly consistent, read-amplifying. This is
	// the correctness baseline and the default.
	PolicyRecompute Policy = "recompute"
	// PolicyCounter gates on a denormalized available_slots counter
	// decremented and incremented in the same transaction as every
	// lifecycle transition. Cheap reads; the gate is instant-based rather
	// than window-based, so it can refuse disjoint windows the recompute
	// policy would accept.
	PolicyCounter Policy = "counter"
)

// Valid reports whether p names a known policy.
func (p Policy) Valid() bool {
	return p == PolicyRecompute || p == PolicyCounter
}

// IsAvailable answers whether a station with the given capacity has a free
// slot over the window, given live reservation data.
func IsAvailable(totalSlots int, window TimeRange, reservations []Reservation) bool {
	return OccupiedOverlapping(window, reservations) < totalSlots
}
