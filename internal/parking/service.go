package parking

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/ParkSmart/ParkSmart/internal/common/logger"
	"github.com/ParkSmart/ParkSmart/internal/slot"
	"github.com/ParkSmart/ParkSmart/internal/vehicle"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the allocation core: it binds vehicles to free slots at entry,
// releases them at exit and computes the fee. It owns no HTTP concerns.
type Service struct {
	repo        *Repo
	slots       *slot.Repo
	vehicles    *vehicle.Repo
	picker      Picker
	ratePerHour float64
	log         logger.Logger
	now         func() time.Time
}

func NewService(db *gorm.DB, picker Picker, ratePerHour float64, log logger.Logger) *Service {
	if picker == nil {
		picker = RandomPicker{}
	}
	if ratePerHour <= 0 {
		ratePerHour = DefaultRatePerHour
	}
	return &Service{
		repo:        NewRepo(db),
		slots:       slot.NewRepo(db),
		vehicles:    vehicle.NewRepo(db),
		picker:      picker,
		ratePerHour: ratePerHour,
		log:         log,
		now:         time.Now,
	}
}

// EntryResult carries the opened record plus the vehicle and slot it binds,
// so callers can build their confirmation without extra queries.
type EntryResult struct {
	Record  *ParkingRecord
	Vehicle *vehicle.Vehicle
	Slot    *slot.ParkingSlot
}

// Enter validates ownership and slot state, then atomically occupies the
// slot and opens an active record. The occupancy CAS is the only gate: two
// concurrent entries on one slot cannot both pass it.
func (s *Service) Enter(ctx context.Context, vehicleID, slotID, parkingType, ownerID string) (*EntryResult, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMissingField
	}
	vehicleID = strings.TrimSpace(vehicleID)
	slotID = strings.TrimSpace(slotID)
	if vehicleID == "" || slotID == "" || ownerID == "" {
		return nil, ErrMissingField
	}
	if parkingType == "" {
		parkingType = "Indoor"
	}

	v, err := s.vehicles.FindByIDOwned(ctx, vehicleID, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	// Load the slot before taking it: once the CAS below wins, every exit
	// from this function must either hold an active record or have released
	// the slot again.
	sl, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if err == slot.ErrNotFound {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if err := s.slots.MarkOccupied(ctx, slotID); err != nil {
		switch err {
		case slot.ErrNotFound:
			return nil, ErrSlotNotFound
		case slot.ErrAlreadyOccupied:
			return nil, ErrSlotOccupied
		default:
			return nil, err
		}
	}
	sl.IsOccupied = true

	rec := &ParkingRecord{
		ID:          uuid.NewString(),
		VehicleID:   vehicleID,
		SlotID:      slotID,
		OwnerID:     ownerID,
		EntryTime:   s.now().UTC(),
		ParkingType: parkingType,
		Status:      StatusActive,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// Roll the occupancy back so the slot is not stranded.
		if freeErr := s.slots.MarkFree(ctx, slotID); freeErr != nil && s.log != nil {
			s.log.Errorf("failed to release slot %s after record insert failure: %v", slotID, freeErr)
		}
		return nil, err
	}
	return &EntryResult{Record: rec, Vehicle: v, Slot: sl}, nil
}

// ExitResult is what the exit operation reports back to the caller.
type ExitResult struct {
	DurationMinutes int
	Fee             float64
}

// Exit closes the record (one-way transition, guarded per record), computes
// the fee and frees the slot. A second exit on the same record observes
// ErrAlreadyExited; the slot stays free.
func (s *Service) Exit(ctx context.Context, recordID, ownerID string) (*ExitResult, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMissingField
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" || ownerID == "" {
		return nil, ErrMissingField
	}

	rec, err := s.repo.GetByIDOwned(ctx, recordID, ownerID)
	if err != nil {
		return nil, err
	}
	if rec.ExitTime != nil {
		return nil, ErrAlreadyExited
	}

	exitTime := s.now().UTC()
	durationMinutes := int(exitTime.Sub(rec.EntryTime).Seconds()) / 60
	fee := CalculateFee(durationMinutes, s.ratePerHour)

	if err := s.repo.CompleteExit(ctx, recordID, exitTime, fee); err != nil {
		return nil, err
	}

	if err := s.slots.MarkFree(ctx, rec.SlotID); err != nil && s.log != nil {
		// The record is already completed; a missing slot only loses the
		// release, not the exit.
		s.log.Errorf("failed to free slot %s on exit of record %s: %v", rec.SlotID, recordID, err)
	}

	return &ExitResult{DurationMinutes: durationMinutes, Fee: fee}, nil
}

// Proposal is an advisory slot/vehicle pairing. Nothing is reserved: the
// proposed slot can be taken by another entry before the caller confirms.
type Proposal struct {
	Vehicle *vehicle.Vehicle
	Slot    *slot.ParkingSlot
}

// DetectAndAssign simulates license plate detection: it resolves the plate
// and proposes one available slot for the requested parking type.
func (s *Service) DetectAndAssign(ctx context.Context, plate, parkingType string) (*Proposal, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMissingField
	}
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return nil, ErrMissingField
	}
	if parkingType == "" {
		parkingType = "Indoor"
	}

	v, err := s.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	available, err := s.slots.ListAvailable(ctx, strings.ToLower(parkingType))
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, ErrNoAvailableSlot
	}

	picked := s.picker.Pick(available, 0, 0)
	if picked == nil {
		return nil, ErrNoAvailableSlot
	}
	return &Proposal{Vehicle: v, Slot: picked}, nil
}

// NearestSlot is the nearest-outdoor-slot answer: a candidate slot, its
// coordinate and a distance/walk-time estimate.
type NearestSlot struct {
	Slot             *slot.ParkingSlot
	Latitude         float64
	Longitude        float64
	DistanceMeters   int
	EstimatedMinutes int
}

// Walking speed used to turn a distance into a time estimate.
const walkMetersPerMinute = 80

// NearestOutdoor proposes an available outdoor slot for the caller position.
// Under the random policy distance and walk time are synthesized, matching
// the original placeholder behavior; under the nearest policy both derive
// from the real haversine distance.
func (s *Service) NearestOutdoor(ctx context.Context, lat, lng float64) (*NearestSlot, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMissingField
	}

	available, err := s.slots.ListAvailable(ctx, slot.LocationOutdoor)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, ErrNoAvailableSlot
	}

	picked := s.picker.Pick(available, lat, lng)
	if picked == nil {
		return nil, ErrNoAvailableSlot
	}

	slotLat, slotLng, ok := picked.LatLng()
	if !ok {
		// No stored coordinate: synthesize one near the caller.
		slotLat = lat + float64(rand.Intn(21)-10)/1000
		slotLng = lng + float64(rand.Intn(21)-10)/1000
	}

	out := &NearestSlot{
		Slot:      picked,
		Latitude:  slotLat,
		Longitude: slotLng,
	}
	if _, isNearest := s.picker.(NearestPicker); isNearest && ok {
		d := haversineMeters(lat, lng, slotLat, slotLng)
		out.DistanceMeters = int(math.Round(d))
		out.EstimatedMinutes = int(math.Max(1, math.Round(d/walkMetersPerMinute)))
	} else {
		out.DistanceMeters = 50 + rand.Intn(451) // 50..500 m
		out.EstimatedMinutes = 1 + rand.Intn(5)  // 1..5 min
	}
	return out, nil
}

func (s *Service) ActiveByOwner(ctx context.Context, ownerID string) ([]ParkingRecord, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMissingField
	}
	return s.repo.ListActiveByOwner(ctx, ownerID)
}

func (s *Service) HistoryByOwner(ctx context.Context, ownerID string, limit int) ([]ParkingRecord, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMissingField
	}
	return s.repo.ListHistoryByOwner(ctx, ownerID, limit)
}
