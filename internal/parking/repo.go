package parking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, rec *ParkingRecord) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(rec).Error
}

// GetByIDOwned returns the record only when it belongs to ownerID. A record
// that exists but is owned by someone else reads as not found.
func (r *Repo) GetByIDOwned(ctx context.Context, id, ownerID string) (*ParkingRecord, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rec ParkingRecord
	err := db.Where("id = ? AND owner_id = ?", id, ownerID).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CompleteExit performs the one-way active -> completed transition as a
// single conditional update guarded on exit_time IS NULL. Exactly one of two
// concurrent exits can win; the other gets ErrAlreadyExited.
func (r *Repo) CompleteExit(ctx context.Context, id string, exitTime time.Time, fee float64) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Model(&ParkingRecord{}).
		Where("id = ? AND exit_time IS NULL", id).
		Updates(map[string]any{
			"exit_time":      exitTime,
			"fee":            fee,
			"status":         StatusCompleted,
			"payment_status": "paid",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExited
	}
	return nil
}

func (r *Repo) ListActiveByOwner(ctx context.Context, ownerID string) ([]ParkingRecord, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var recs []ParkingRecord
	err := db.Where("owner_id = ? AND exit_time IS NULL", ownerID).
		Order("entry_time DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// ListHistoryByOwner returns completed records, most recent exit first.
// limit <= 0 means no limit.
func (r *Repo) ListHistoryByOwner(ctx context.Context, ownerID string, limit int) ([]ParkingRecord, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := db.Where("owner_id = ? AND exit_time IS NOT NULL", ownerID).
		Order("exit_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []ParkingRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// CountActiveForSlot supports the occupancy invariant check: a slot is
// occupied iff exactly one active record references it.
func (r *Repo) CountActiveForSlot(ctx context.Context, slotID string) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&ParkingRecord{}).
		Where("slot_id = ? AND status = ?", slotID, StatusActive).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
