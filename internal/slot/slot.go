package slot

import (
	"strconv"
	"strings"
	"time"
)

const (
	LocationIndoor  = "indoor"
	LocationOutdoor = "outdoor"
)

// ParkingSlot is the GORM model for the parking_slots table. IsOccupied is
// the only field that changes after seeding.
type ParkingSlot struct {
	ID          string    `gorm:"primaryKey;size:36"`
	SlotNumber  string    `gorm:"uniqueIndex;size:10;not null"`
	Location    string    `gorm:"index;size:20;not null"` // indoor / outdoor
	Area        string    `gorm:"size:50"`
	IsOccupied  bool      `gorm:"not null;default:false"`
	Coordinates string    `gorm:"size:64"` // "lat,lng", outdoor slots only
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// LatLng parses the stored "lat,lng" coordinate pair.
func (s ParkingSlot) LatLng() (lat, lng float64, ok bool) {
	parts := strings.Split(s.Coordinates, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
