package vehicle

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Vehicle{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFindByPlateExactMatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	v := &Vehicle{ID: uuid.NewString(), LicensePlate: "ABC-123", OwnerID: uuid.NewString()}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByPlate(ctx, "ABC-123")
	if err != nil {
		t.Fatalf("FindByPlate: %v", err)
	}
	if got.ID != v.ID {
		t.Fatalf("expected vehicle %s, got %s", v.ID, got.ID)
	}

	if _, err := repo.FindByPlate(ctx, "NO-SUCH"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFindByIDOwnedScopesToOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	v := &Vehicle{ID: uuid.NewString(), LicensePlate: "DEF-456", OwnerID: ownerID}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.FindByIDOwned(ctx, v.ID, ownerID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := repo.FindByIDOwned(ctx, v.ID, uuid.NewString()); err != gorm.ErrRecordNotFound {
		t.Fatalf("foreign owner must not see the vehicle, got %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	ownerID := uuid.NewString()
	for _, plate := range []string{"AAA-111", "BBB-222"} {
		if err := repo.Create(ctx, &Vehicle{ID: uuid.NewString(), LicensePlate: plate, OwnerID: ownerID}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(ctx, &Vehicle{ID: uuid.NewString(), LicensePlate: "CCC-333", OwnerID: uuid.NewString()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	vehicles, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
	}
}
