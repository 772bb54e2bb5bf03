package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"chargebook/internal/models"
	"chargebook/internal/service"
)

// StationsHandler serves the public listing and the admin CRUD surface.
type StationsHandler struct {
	stations *service.StationService
	bookings *service.BookingService
}

// NewStationsHandler builds handler.
func NewStationsHandler(stations *service.StationService, bookings *service.BookingService) *StationsHandler {
	return &StationsHandler{stations: stations, bookings: bookings}
}

// List handles GET /stations?type=&q=.
func (h *StationsHandler) List(w http.ResponseWriter, r *http.Request) {
	chargerType := r.URL.Query().Get("type")
	if chargerType != "" && !models.ValidChargerType(chargerType) {
		writeError(w, http.StatusBadRequest, "unknown charger type")
		return
	}
	listings, err := h.stations.ListStations(r.Context(), chargerType, r.URL.Query().Get("q"))
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stations": listings})
}

// Availability handles GET /stations/{id}/availability?start=&end=.
func (h *StationsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	stationID := r.PathValue("id")
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end time")
		return
	}

	available, freeSlots, err := h.bookings.CheckAvailability(r.Context(), stationID, start, end)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available":  available,
		"free_slots": freeSlots,
	})
}

type stationRequest struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Zip           string  `json:"zip"`
	ContactNumber string  `json:"contact_number"`
	ChargerType   string  `json:"charger_type"`
	TotalSlots    int     `json:"total_slots"`
	PricePerHour  float64 `json:"price_per_hour"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
}

func (req stationRequest) input() service.StationInput {
	return service.StationInput{
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Zip:           req.Zip,
		ContactNumber: req.ContactNumber,
		ChargerType:   req.ChargerType,
		TotalSlots:    req.TotalSlots,
		PricePerHour:  req.PricePerHour,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
	}
}

// Create handles POST /admin/stations.
func (h *StationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	station, err := h.stations.CreateStation(r.Context(), req.input())
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, station)
}

// Update handles PUT /admin/stations/{id}.
func (h *StationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	station, err := h.stations.UpdateStation(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}

// Delete handles DELETE /admin/stations/{id} (soft delete).
func (h *StationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.stations.DeleteStation(r.Context(), r.PathValue("id")); err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Bookings handles GET /admin/stations/{id}/bookings.
func (h *StationsHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.stations.StationBookings(r.Context(), r.PathValue("id"), 100)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}
