package booking

import "errors"

var (
	// ErrInvalidRange is returned when a time range ends before it starts.
	ErrInvalidRange = errors.New("booking: invalid time range")
	// ErrInvalidWindow is returned when a booking window does not start in the future.
	ErrInvalidWindow = errors.New("booking: window must start in the future")
	// ErrSlotUnavailable indicates capacity is exhausted for the requested window.
	ErrSlotUnavailable = errors.New("booking: no slot available")
	// ErrInsufficientBalance indicates the user cannot cover the booking amount.
	ErrInsufficientBalance = errors.New("booking: insufficient balance")
	// ErrInvalidState indicates a lifecycle transition from the wrong state.
	ErrInvalidState = errors.New("booking: invalid state for transition")
	// ErrUnauthorized indicates the requester does not own the booking.
	ErrUnauthorized = errors.New("booking: not authorized")
	// ErrNotFound indicates a missing station, booking or user.
	ErrNotFound = errors.New("booking: not found")
	// ErrStorageFailure wraps storage errors and aborted transactions.
	ErrStorageFailure = errors.New("booking: storage failure")
)
