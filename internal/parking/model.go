package parking

import "time"

// Status is the parking record lifecycle (persisted as a string).
// The transition is one-way: active -> completed, nothing else.
type Status string

const (
	StatusActive    Status = "active"    // vehicle is in the slot
	StatusCompleted Status = "completed" // exit processed, fee settled
)

// ParkingRecord is the GORM model for one park-and-leave event. It is
// created at entry and mutated exactly once at exit (exit time, fee,
// status, payment status); never deleted.
type ParkingRecord struct {
	ID string `gorm:"primaryKey;size:36"`

	VehicleID string `gorm:"index;size:36;not null"`
	SlotID    string `gorm:"index;size:36;not null"`
	// Owner is denormalized from the vehicle so history queries stay a
	// single-table scan.
	OwnerID string `gorm:"index;size:36;not null"`

	EntryTime     time.Time  `gorm:"not null"`
	ExitTime      *time.Time // nil while the vehicle is parked
	ParkingType   string     `gorm:"size:20"`
	Fee           float64    `gorm:"not null;default:0"` // defined only after exit
	Status        Status     `gorm:"type:varchar(16);index;not null"`
	PaymentStatus string     `gorm:"size:20"` // set to "paid" on exit (simulated payment)

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// DurationMinutes is the whole-minute parked duration; nil before exit.
func (r ParkingRecord) DurationMinutes() *int {
	if r.ExitTime == nil {
		return nil
	}
	d := int(r.ExitTime.Sub(r.EntryTime).Seconds()) / 60
	return &d
}
