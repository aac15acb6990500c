package parking

import (
	"math"
	"math/rand"

	"github.com/ParkSmart/ParkSmart/internal/slot"
)

// Picker chooses one slot out of the available candidates. The choice is
// advisory: nothing is reserved until Enter wins the occupancy CAS.
type Picker interface {
	Pick(candidates []slot.ParkingSlot, lat, lng float64) *slot.ParkingSlot
}

// NewPicker maps the configured selection policy name to an implementation.
// Unknown names fall back to random.
func NewPicker(selection string) Picker {
	if selection == "nearest" {
		return NearestPicker{}
	}
	return RandomPicker{}
}

// RandomPicker picks uniformly among the candidates, ignoring the caller
// position. This matches the original system's behavior.
type RandomPicker struct{}

func (RandomPicker) Pick(candidates []slot.ParkingSlot, _, _ float64) *slot.ParkingSlot {
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[rand.Intn(len(candidates))]
}

// NearestPicker picks the candidate with the smallest haversine distance to
// the caller. Candidates without coordinates are skipped; if none carries a
// coordinate the first candidate wins.
type NearestPicker struct{}

func (NearestPicker) Pick(candidates []slot.ParkingSlot, lat, lng float64) *slot.ParkingSlot {
	if len(candidates) == 0 {
		return nil
	}
	best := -1
	bestDist := math.MaxFloat64
	for i := range candidates {
		sLat, sLng, ok := candidates[i].LatLng()
		if !ok {
			continue
		}
		d := haversineMeters(lat, lng, sLat, sLng)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return &candidates[0]
	}
	return &candidates[best]
}

const earthRadiusMeters = 6371000

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
