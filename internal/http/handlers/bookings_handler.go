package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"chargebook/internal/http/middleware"
	"chargebook/internal/service"
)

// BookingsHandler serves the booking lifecycle endpoints.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler builds handler.
func NewBookingsHandler(bookings *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

type createBookingRequest struct {
	StationID    string    `json:"station_id"`
	Start        time.Time `json:"start_time"`
	End          time.Time `json:"end_time"`
	VehicleType  string    `json:"vehicle_type"`
	LicensePlate string    `json:"license_plate"`
}

// Create handles POST /bookings.
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.bookings.CreateBooking(r.Context(), service.CreateBookingInput{
		StationID:    req.StationID,
		UserID:       identity.UserID,
		Start:        req.Start,
		End:          req.End,
		VehicleType:  req.VehicleType,
		LicensePlate: req.LicensePlate,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Confirm handles POST /bookings/{id}/confirm.
func (h *BookingsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.bookings.ConfirmBooking(r.Context(), r.PathValue("id"), identity.UserID); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// Cancel handles POST /bookings/{id}/cancel.
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.bookings.CancelBooking(r.Context(), r.PathValue("id"), identity.UserID); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Mine handles GET /bookings/me.
func (h *BookingsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	bookings, err := h.bookings.ListUserBookings(r.Context(), identity.UserID, 50)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}
