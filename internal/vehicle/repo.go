package vehicle

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(v).Error
}

// FindByPlate is an exact, case-sensitive plate lookup.
func (r *Repo) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := r.db.WithContext(ctx).Where("license_plate = ?", plate).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByIDOwned scopes the lookup to the given owner. Callers may only
// operate on vehicles they own.
func (r *Repo) FindByIDOwned(ctx context.Context, id, ownerID string) (*Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var vehicles []Vehicle
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at desc").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}
