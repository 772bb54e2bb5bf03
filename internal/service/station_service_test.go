package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargebook/internal/booking"
	"chargebook/internal/models"
)

func newStationFixture(t *testing.T) (*memDB, *StationService) {
	t.Helper()
	db := newMemDB()
	bookingSvc := NewBookingService(
		&fakeStationStore{db: db},
		&fakeBookingStore{db: db},
		&fakeUserStore{db: db},
		nil,
		booking.PolicyRecompute,
		zap.NewNop(),
	)
	bookingSvc.now = func() time.Time { return testNow }
	return db, NewStationService(&fakeStationStore{db: db}, bookingSvc, zap.NewNop())
}

func validStationInput() StationInput {
	return StationInput{
		Name:          "Riverside Chargers",
		Address:       "42 River Rd",
		City:          "Springfield",
		State:         "IL",
		Zip:           "62701",
		ContactNumber: "555-0101",
		ChargerType:   models.ChargerTypeFast,
		TotalSlots:    4,
		PricePerHour:  12.5,
	}
}

func TestCreateStation(t *testing.T) {
	_, svc := newStationFixture(t)

	station, err := svc.CreateStation(context.Background(), validStationInput())
	if err != nil {
		t.Fatalf("CreateStation: %v", err)
	}
	if !station.IsActive {
		t.Error("new station should be active")
	}
	if station.AvailableSlots != station.TotalSlots {
		t.Errorf("available slots = %d, want %d", station.AvailableSlots, station.TotalSlots)
	}
}

func TestCreateStationValidation(t *testing.T) {
	_, svc := newStationFixture(t)

	tests := []struct {
		name   string
		mutate func(*StationInput)
	}{
		{"zero slots", func(in *StationInput) { in.TotalSlots = 0 }},
		{"too many slots", func(in *StationInput) { in.TotalSlots = 51 }},
		{"negative price", func(in *StationInput) { in.PricePerHour = -1 }},
		{"unknown charger type", func(in *StationInput) { in.ChargerType = "turbo" }},
		{"missing name", func(in *StationInput) { in.Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validStationInput()
			tt.mutate(&input)
			if _, err := svc.CreateStation(context.Background(), input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUpdateStationCapacityImmutable(t *testing.T) {
	_, svc := newStationFixture(t)

	station, err := svc.CreateStation(context.Background(), validStationInput())
	if err != nil {
		t.Fatalf("CreateStation: %v", err)
	}

	input := validStationInput()
	input.TotalSlots = station.TotalSlots + 1
	_, err = svc.UpdateStation(context.Background(), station.ID, input)
	if !errors.Is(err, booking.ErrInvalidState) {
		t.Fatalf("capacity change: got %v, want ErrInvalidState", err)
	}

	input.TotalSlots = station.TotalSlots
	input.Name = "Renamed"
	updated, err := svc.UpdateStation(context.Background(), station.ID, input)
	if err != nil {
		t.Fatalf("UpdateStation: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %s, want Renamed", updated.Name)
	}
}

func TestDeleteStationIsSoft(t *testing.T) {
	db, svc := newStationFixture(t)

	station, err := svc.CreateStation(context.Background(), validStationInput())
	if err != nil {
		t.Fatalf("CreateStation: %v", err)
	}
	if err := svc.DeleteStation(context.Background(), station.ID); err != nil {
		t.Fatalf("DeleteStation: %v", err)
	}

	// The row survives with the active flag cleared.
	stored := db.stations[station.ID]
	if stored == nil {
		t.Fatal("soft delete removed the row")
	}
	if stored.IsActive {
		t.Error("station still active after delete")
	}

	listings, err := svc.ListStations(context.Background(), "", "")
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	for _, l := range listings {
		if l.ID == station.ID {
			t.Error("deleted station still listed")
		}
	}
}

func TestListStationsFilters(t *testing.T) {
	_, svc := newStationFixture(t)

	fast := validStationInput()
	fast.Name = "Fast Hub"
	if _, err := svc.CreateStation(context.Background(), fast); err != nil {
		t.Fatalf("CreateStation: %v", err)
	}

	normal := validStationInput()
	normal.Name = "Slow Corner"
	normal.ChargerType = models.ChargerTypeNormal
	if _, err := svc.CreateStation(context.Background(), normal); err != nil {
		t.Fatalf("CreateStation: %v", err)
	}

	listings, err := svc.ListStations(context.Background(), models.ChargerTypeNormal, "")
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if len(listings) != 1 || listings[0].Name != "Slow Corner" {
		t.Errorf("type filter returned %+v", listings)
	}

	listings, err = svc.ListStations(context.Background(), "", "fast hub")
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if len(listings) != 1 || listings[0].Name != "Fast Hub" {
		t.Errorf("text filter returned %+v", listings)
	}
}

func TestSnapshotReportsFreeSlots(t *testing.T) {
	_, svc := newStationFixture(t)

	station, err := svc.CreateStation(context.Background(), validStationInput())
	if err != nil {
		t.Fatalf("CreateStation: %v", err)
	}

	snapshots, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("snapshot count = %d, want 1", len(snapshots))
	}
	if snapshots[0].StationID != station.ID {
		t.Errorf("station id = %s, want %s", snapshots[0].StationID, station.ID)
	}
	if snapshots[0].FreeSlots != station.TotalSlots {
		t.Errorf("free slots = %d, want %d", snapshots[0].FreeSlots, station.TotalSlots)
	}
}
