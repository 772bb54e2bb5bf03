package booking

import "time"

// TimeRange is a half-open booking interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange validates the construction invariant Start < End.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidRange
	}
	return TimeRange{Start: start.UTC(), End: end.UTC()}, nil
}

// Overlaps reports whether two windows conflict. Half-open semantics:
// ranges sharing only an endpoint do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether an instant falls inside the window, bounds
// inclusive. This is the "active right now" check and is deliberately
// wider than Overlaps at the endpoints.
func (r TimeRange) Contains(instant time.Time) bool {
	return !instant.Before(r.Start) && !instant.After(r.End)
}

// Duration returns the window length.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Hours returns the window length in hours.
func (r TimeRange) Hours() float64 {
	return r.Duration().Hours()
}
