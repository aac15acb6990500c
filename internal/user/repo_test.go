package user

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
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAndLookups(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	u := &User{
		ID:           uuid.NewString(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		PasswordSalt: "salt",
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if byName.ID != u.ID {
		t.Fatalf("expected user %s, got %s", u.ID, byName.ID)
	}

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("expected user %s, got %s", u.ID, byEmail.ID)
	}

	if _, err := repo.FindByID(ctx, u.ID); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if _, err := repo.FindByUsername(ctx, "nobody"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &User{
		ID: uuid.NewString(), Username: "bob", Email: "bob@example.com",
		PasswordHash: "h", PasswordSalt: "s",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &User{
		ID: uuid.NewString(), Username: "bob", Email: "bob2@example.com",
		PasswordHash: "h", PasswordSalt: "s",
	}); err == nil {
		t.Fatal("duplicate username must fail the unique index")
	}
}
