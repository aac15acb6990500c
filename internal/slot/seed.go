package slot

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InitSlots creates the fixed slot set on first boot: three indoor levels of
// ten slots each and three outdoor lots of fifteen, outdoor slots carrying
// jittered coordinates around a per-lot base point. Slots are seeded free;
// occupancy only ever comes from an active parking record.
func InitSlots(ctx context.Context, db *gorm.DB) (int64, error) {
	repo := NewRepo(db)

	total, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		return total, nil
	}

	var slots []ParkingSlot

	indoorAreas := []string{"Level 1", "Level 2", "Level 3"}
	for _, area := range indoorAreas {
		// "Level 1" -> "L1", slot numbers L101..L110
		code := string(area[0]) + string(area[len(area)-1])
		for i := 1; i <= 10; i++ {
			slots = append(slots, ParkingSlot{
				ID:         uuid.NewString(),
				SlotNumber: fmt.Sprintf("%s%02d", code, i),
				Location:   LocationIndoor,
				Area:       area,
			})
		}
	}

	outdoorBase := []struct {
		area     string
		lat, lng float64
	}{
		{"North Lot", 40.7128, -74.0060},
		{"East Lot", 40.7138, -74.0050},
		{"West Lot", 40.7118, -74.0070},
	}
	for _, lot := range outdoorBase {
		for i := 1; i <= 15; i++ {
			lat := lot.lat + float64(rand.Intn(21)-10)/1000
			lng := lot.lng + float64(rand.Intn(21)-10)/1000
			slots = append(slots, ParkingSlot{
				ID:          uuid.NewString(),
				SlotNumber:  fmt.Sprintf("%c%02d", lot.area[0], i),
				Location:    LocationOutdoor,
				Area:        lot.area,
				Coordinates: fmt.Sprintf("%f,%f", lat, lng),
			})
		}
	}

	if err := db.WithContext(ctx).Create(&slots).Error; err != nil {
		return 0, fmt.Errorf("failed to seed parking slots: %w", err)
	}
	return int64(len(slots)), nil
}
