package parking

import (
	"context"
	"testing"
	"time"

	"github.com/ParkSmart/ParkSmart/internal/slot"
	"github.com/ParkSmart/ParkSmart/internal/user"
	"github.com/ParkSmart/ParkSmart/internal/vehicle"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&vehicle.Vehicle{},
		&slot.ParkingSlot{},
		&ParkingRecord{},
	))
	return db
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	ownerID string
	vehicle *vehicle.Vehicle
	indoor  *slot.ParkingSlot
	outdoor *slot.ParkingSlot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	ownerID := uuid.NewString()
	require.NoError(t, db.Create(&user.User{
		ID:           ownerID,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		PasswordSalt: "y",
	}).Error)

	v := &vehicle.Vehicle{
		ID:           uuid.NewString(),
		LicensePlate: "ABC-123",
		Make:         "Toyota",
		Model:        "Corolla",
		Color:        "blue",
		OwnerID:      ownerID,
	}
	require.NoError(t, db.Create(v).Error)

	indoor := &slot.ParkingSlot{
		ID:         uuid.NewString(),
		SlotNumber: "L101",
		Location:   slot.LocationIndoor,
		Area:       "Level 1",
	}
	outdoor := &slot.ParkingSlot{
		ID:          uuid.NewString(),
		SlotNumber:  "N01",
		Location:    slot.LocationOutdoor,
		Area:        "North Lot",
		Coordinates: "40.7128,-74.0060",
	}
	require.NoError(t, db.Create(indoor).Error)
	require.NoError(t, db.Create(outdoor).Error)

	svc := NewService(db, RandomPicker{}, 2.0, nil)
	return &fixture{db: db, svc: svc, ownerID: ownerID, vehicle: v, indoor: indoor, outdoor: outdoor}
}

func (f *fixture) slotOccupied(t *testing.T, id string) bool {
	t.Helper()
	var s slot.ParkingSlot
	require.NoError(t, f.db.Where("id = ?", id).First(&s).Error)
	return s.IsOccupied
}

func TestEnterCreatesActiveRecordAndOccupiesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, StatusActive, res.Record.Status)
	assert.Nil(t, res.Record.ExitTime)
	assert.Equal(t, "ABC-123", res.Vehicle.LicensePlate)
	assert.Equal(t, "L101", res.Slot.SlotNumber)

	assert.True(t, f.slotOccupied(t, f.indoor.ID))

	n, err := f.svc.repo.CountActiveForSlot(ctx, f.indoor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnterOccupiedSlotConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	// Second vehicle, same slot: the conflict does not depend on the vehicle.
	other := &vehicle.Vehicle{
		ID:           uuid.NewString(),
		LicensePlate: "XYZ-999",
		OwnerID:      f.ownerID,
	}
	require.NoError(t, f.db.Create(other).Error)

	_, err = f.svc.Enter(ctx, other.ID, f.indoor.ID, "Indoor", f.ownerID)
	assert.ErrorIs(t, err, ErrSlotOccupied)

	n, err := f.svc.repo.CountActiveForSlot(ctx, f.indoor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnterRejectsForeignVehicle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Enter(context.Background(), f.vehicle.ID, f.indoor.ID, "Indoor", uuid.NewString())
	assert.ErrorIs(t, err, ErrVehicleNotFound)
	assert.False(t, f.slotOccupied(t, f.indoor.ID))
}

func TestEnterReleasesSlotWhenRecordInsertFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Make the record insert fail after the slot has been claimed.
	require.NoError(t, f.db.Migrator().DropTable(&ParkingRecord{}))

	_, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.Error(t, err)

	// No record was opened, so the slot must be free again.
	assert.False(t, f.slotOccupied(t, f.indoor.ID))
}

func TestEnterUnknownSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Enter(context.Background(), f.vehicle.ID, uuid.NewString(), "Indoor", f.ownerID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExitComputesMinimumFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return entry }
	res, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	// 10 minutes later: still billed one full hour.
	f.svc.now = func() time.Time { return entry.Add(10 * time.Minute) }
	out, err := f.svc.Exit(ctx, res.Record.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, 10, out.DurationMinutes)
	assert.Equal(t, 2.0, out.Fee)

	assert.False(t, f.slotOccupied(t, f.indoor.ID))

	var rec ParkingRecord
	require.NoError(t, f.db.Where("id = ?", res.Record.ID).First(&rec).Error)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, "paid", rec.PaymentStatus)
	require.NotNil(t, rec.ExitTime)
}

func TestExitNinetyMinutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return entry }
	res, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return entry.Add(90 * time.Minute) }
	out, err := f.svc.Exit(ctx, res.Record.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, 90, out.DurationMinutes)
	assert.Equal(t, 3.0, out.Fee)
}

func TestDoubleExitFailsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	_, err = f.svc.Exit(ctx, res.Record.ID, f.ownerID)
	require.NoError(t, err)

	_, err = f.svc.Exit(ctx, res.Record.ID, f.ownerID)
	assert.ErrorIs(t, err, ErrAlreadyExited)

	// The failed second exit must not touch slot occupancy.
	assert.False(t, f.slotOccupied(t, f.indoor.ID))
}

func TestExitRejectsForeignRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	_, err = f.svc.Exit(ctx, res.Record.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrRecordNotFound)

	assert.True(t, f.slotOccupied(t, f.indoor.ID))
}

func TestDetectAndAssignProposesWithoutReserving(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.DetectAndAssign(ctx, "ABC-123", "Indoor")
	require.NoError(t, err)
	assert.Equal(t, f.vehicle.ID, p.Vehicle.ID)
	assert.Equal(t, f.indoor.ID, p.Slot.ID)

	// Proposal is advisory only.
	assert.False(t, f.slotOccupied(t, p.Slot.ID))
}

func TestDetectAndAssignUnknownPlate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DetectAndAssign(context.Background(), "NO-SUCH", "Indoor")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestDetectAndAssignNoAvailableSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	_, err = f.svc.DetectAndAssign(ctx, "ABC-123", "Indoor")
	assert.ErrorIs(t, err, ErrNoAvailableSlot)
}

func TestNearestOutdoorRandomPolicy(t *testing.T) {
	f := newFixture(t)

	n, err := f.svc.NearestOutdoor(context.Background(), 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, f.outdoor.ID, n.Slot.ID)
	assert.GreaterOrEqual(t, n.DistanceMeters, 50)
	assert.LessOrEqual(t, n.DistanceMeters, 500)
	assert.GreaterOrEqual(t, n.EstimatedMinutes, 1)
	assert.LessOrEqual(t, n.EstimatedMinutes, 5)
}

func TestNearestOutdoorNearestPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	far := &slot.ParkingSlot{
		ID:          uuid.NewString(),
		SlotNumber:  "N02",
		Location:    slot.LocationOutdoor,
		Area:        "North Lot",
		Coordinates: "40.8000,-74.1000",
	}
	require.NoError(t, f.db.Create(far).Error)

	svc := NewService(f.db, NearestPicker{}, 2.0, nil)
	n, err := svc.NearestOutdoor(ctx, 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Equal(t, f.outdoor.ID, n.Slot.ID)
	assert.Greater(t, n.DistanceMeters, 0)
	assert.GreaterOrEqual(t, n.EstimatedMinutes, 1)
}

func TestNearestOutdoorNoSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&slot.ParkingSlot{}).
		Where("location = ?", slot.LocationOutdoor).
		Update("is_occupied", true).Error)

	_, err := f.svc.NearestOutdoor(ctx, 40.7128, -74.0060)
	assert.ErrorIs(t, err, ErrNoAvailableSlot)
}

func TestActiveAndHistoryListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return entry }
	res, err := f.svc.Enter(ctx, f.vehicle.ID, f.indoor.ID, "Indoor", f.ownerID)
	require.NoError(t, err)

	active, err := f.svc.ActiveByOwner(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, res.Record.ID, active[0].ID)

	history, err := f.svc.HistoryByOwner(ctx, f.ownerID, 5)
	require.NoError(t, err)
	assert.Empty(t, history)

	f.svc.now = func() time.Time { return entry.Add(time.Hour) }
	_, err = f.svc.Exit(ctx, res.Record.ID, f.ownerID)
	require.NoError(t, err)

	active, err = f.svc.ActiveByOwner(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Empty(t, active)

	history, err = f.svc.HistoryByOwner(ctx, f.ownerID, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	d := history[0].DurationMinutes()
	require.NotNil(t, d)
	assert.Equal(t, 60, *d)
}
