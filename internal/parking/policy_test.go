package parking

import (
	"testing"

	"github.com/ParkSmart/ParkSmart/internal/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPickerReturnsCandidate(t *testing.T) {
	candidates := []slot.ParkingSlot{
		{ID: "a", SlotNumber: "N01"},
		{ID: "b", SlotNumber: "N02"},
		{ID: "c", SlotNumber: "N03"},
	}
	p := RandomPicker{}
	for i := 0; i < 20; i++ {
		picked := p.Pick(candidates, 0, 0)
		require.NotNil(t, picked)
		assert.Contains(t, []string{"a", "b", "c"}, picked.ID)
	}
}

func TestRandomPickerEmpty(t *testing.T) {
	assert.Nil(t, RandomPicker{}.Pick(nil, 0, 0))
}

func TestNearestPickerPicksClosest(t *testing.T) {
	candidates := []slot.ParkingSlot{
		{ID: "far", Coordinates: "40.7200,-74.0000"},
		{ID: "near", Coordinates: "40.7129,-74.0061"},
		{ID: "mid", Coordinates: "40.7150,-74.0030"},
	}
	picked := NearestPicker{}.Pick(candidates, 40.7128, -74.0060)
	require.NotNil(t, picked)
	assert.Equal(t, "near", picked.ID)
}

func TestNearestPickerSkipsMissingCoordinates(t *testing.T) {
	candidates := []slot.ParkingSlot{
		{ID: "nocoords"},
		{ID: "near", Coordinates: "40.7129,-74.0061"},
	}
	picked := NearestPicker{}.Pick(candidates, 40.7128, -74.0060)
	require.NotNil(t, picked)
	assert.Equal(t, "near", picked.ID)
}

func TestNearestPickerFallsBackWithoutAnyCoordinates(t *testing.T) {
	candidates := []slot.ParkingSlot{{ID: "a"}, {ID: "b"}}
	picked := NearestPicker{}.Pick(candidates, 0, 0)
	require.NotNil(t, picked)
	assert.Equal(t, "a", picked.ID)
}

func TestHaversineKnownDistance(t *testing.T) {
	// ~1.11 km per 0.01 degree of latitude.
	d := haversineMeters(40.0, -74.0, 40.01, -74.0)
	assert.InDelta(t, 1112, d, 10)
}
