package slot

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("parking slot not found")
	ErrAlreadyOccupied = errors.New("parking slot is already occupied")
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByID(ctx context.Context, id string) (*ParkingSlot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s ParkingSlot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListAvailable returns free slots for a location. Order is unspecified.
func (r *Repo) ListAvailable(ctx context.Context, location string) ([]ParkingSlot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var slots []ParkingSlot
	err := r.db.WithContext(ctx).
		Where("location = ? AND is_occupied = ?", location, false).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *Repo) ListByLocation(ctx context.Context, location string) ([]ParkingSlot, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var slots []ParkingSlot
	if err := r.db.WithContext(ctx).Where("location = ?", location).Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// MarkOccupied flips the occupancy flag with a single-row compare-and-set:
// UPDATE ... WHERE id = ? AND is_occupied = false. Two concurrent callers
// cannot both win the row; the loser sees ErrAlreadyOccupied.
func (r *Repo) MarkOccupied(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := r.db.WithContext(ctx).
		Model(&ParkingSlot{}).
		Where("id = ? AND is_occupied = ?", id, false).
		Update("is_occupied", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race or no such slot; a follow-up read disambiguates.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyOccupied
	}
	return nil
}

// MarkFree releases a slot. Releasing an already-free slot is not an error
// so that the exit path stays idempotent under manual corrections.
func (r *Repo) MarkFree(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := r.db.WithContext(ctx).
		Model(&ParkingSlot{}).
		Where("id = ?", id).
		Update("is_occupied", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&ParkingSlot{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
