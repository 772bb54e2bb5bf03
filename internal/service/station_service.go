package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chargebook/internal/booking"
	"chargebook/internal/models"
)

// StationService handles admin station CRUD and the public listing with
// derived availability.
type StationService struct {
	stations StationStore
	bookings *BookingService
	logger   *zap.Logger
}

// NewStationService builds service.
func NewStationService(stations StationStore, bookings *BookingService, logger *zap.Logger) *StationService {
	return &StationService{
		stations: stations,
		bookings: bookings,
		logger:   logger,
	}
}

// StationInput carries station create/update fields.
type StationInput struct {
	Name          string  `validate:"required"`
	Address       string  `validate:"required"`
	City          string  `validate:"required"`
	State         string  `validate:"required"`
	Zip           string  `validate:"required"`
	ContactNumber string  `validate:"required"`
	ChargerType   string  `validate:"required,oneof=fast normal both"`
	TotalSlots    int     `validate:"min=1,max=50"`
	PricePerHour  float64 `validate:"gte=0"`
	Description   string
	ImageURL      string
}

// CreateStation registers a new active station with all slots free.
func (s *StationService) CreateStation(ctx context.Context, input StationInput) (*models.Station, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("station: invalid input: %w", err)
	}

	station := &models.Station{
		Name:          strings.TrimSpace(input.Name),
		Address:       strings.TrimSpace(input.Address),
		City:          strings.TrimSpace(input.City),
		State:         strings.TrimSpace(input.State),
		Zip:           strings.TrimSpace(input.Zip),
		ContactNumber: strings.TrimSpace(input.ContactNumber),
		ChargerType:   input.ChargerType,
		TotalSlots:    input.TotalSlots,
		PricePerHour:  decimal.NewFromFloat(input.PricePerHour),
		Description:   strings.TrimSpace(input.Description),
		ImageURL:      strings.TrimSpace(input.ImageURL),
	}

	if err := s.stations.Create(ctx, station); err != nil {
		return nil, err
	}

	s.logger.Info("station created",
		zap.String("station_id", station.ID),
		zap.String("name", station.Name),
		zap.Int("total_slots", station.TotalSlots),
	)
	return station, nil
}

// UpdateStation rewrites display fields. Capacity is immutable: a changed
// TotalSlots is rejected rather than silently dropped.
func (s *StationService) UpdateStation(ctx context.Context, id string, input StationInput) (*models.Station, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("station: invalid input: %w", err)
	}

	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.TotalSlots != station.TotalSlots {
		return nil, fmt.Errorf("%w: station capacity is immutable", booking.ErrInvalidState)
	}

	station.Name = strings.TrimSpace(input.Name)
	station.Address = strings.TrimSpace(input.Address)
	station.City = strings.TrimSpace(input.City)
	station.State = strings.TrimSpace(input.State)
	station.Zip = strings.TrimSpace(input.Zip)
	station.ContactNumber = strings.TrimSpace(input.ContactNumber)
	station.ChargerType = input.ChargerType
	station.PricePerHour = decimal.NewFromFloat(input.PricePerHour)
	station.Description = strings.TrimSpace(input.Description)
	station.ImageURL = strings.TrimSpace(input.ImageURL)

	if err := s.stations.Update(ctx, station); err != nil {
		return nil, err
	}

	s.logger.Info("station updated", zap.String("station_id", station.ID))
	return station, nil
}

// DeleteStation soft-deletes: the station disappears from listings but its
// booking history survives.
func (s *StationService) DeleteStation(ctx context.Context, id string) error {
	if err := s.stations.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("station deactivated", zap.String("station_id", id))
	return nil
}

// StationListing is a station with its derived free-slot count.
type StationListing struct {
	models.Station
	FreeSlots int `json:"free_slots"`
}

// ListStations returns active stations with current free slots, optionally
// filtered by charger type and a free-text search over name, address and city.
func (s *StationService) ListStations(ctx context.Context, chargerType, query string) ([]StationListing, error) {
	stations, err := s.stations.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	listings := make([]StationListing, 0, len(stations))
	for i := range stations {
		station := stations[i]
		if chargerType != "" && station.ChargerType != chargerType {
			continue
		}
		if query != "" && !matchesQuery(&station, query) {
			continue
		}
		free, err := s.bookings.FreeSlotsNow(ctx, &station)
		if err != nil {
			return nil, err
		}
		listings = append(listings, StationListing{Station: station, FreeSlots: free})
	}
	return listings, nil
}

// StationBookings returns a station's bookings in every status. Admin view.
func (s *StationService) StationBookings(ctx context.Context, stationID string, limit int) ([]models.Booking, error) {
	if _, err := s.stations.GetByID(ctx, stationID); err != nil {
		return nil, err
	}
	return s.bookings.bookings.ListForStation(ctx, stationID, limit)
}

// Snapshot produces the full-replacement availability view delivered to
// live subscribers.
func (s *StationService) Snapshot(ctx context.Context) ([]models.StationSnapshot, error) {
	stations, err := s.stations.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.StationSnapshot, 0, len(stations))
	for i := range stations {
		station := stations[i]
		free, err := s.bookings.FreeSlotsNow(ctx, &station)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, models.StationSnapshot{
			StationID:    station.ID,
			Name:         station.Name,
			ChargerType:  station.ChargerType,
			PricePerHour: station.PricePerHour,
			FreeSlots:    free,
			TotalSlots:   station.TotalSlots,
		})
	}
	return snapshots, nil
}

func matchesQuery(station *models.Station, query string) bool {
	return strings.Contains(strings.ToLower(station.Name), query) ||
		strings.Contains(strings.ToLower(station.Address), query) ||
		strings.Contains(strings.ToLower(station.City), query)
}
