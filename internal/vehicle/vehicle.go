package vehicle

import (
	"time"
)

// Vehicle is the GORM model for the vehicles table. A vehicle belongs to
// exactly one owner; the plate is unique across the system.
type Vehicle struct {
	ID           string    `gorm:"primaryKey;size:36"`
	LicensePlate string    `gorm:"uniqueIndex;size:20;not null"`
	Make         string    `gorm:"size:50"`
	Model        string    `gorm:"size:50"`
	Color        string    `gorm:"size:30"`
	OwnerID      string    `gorm:"index;size:36;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
