package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Khaeshi/cafe-api/internal/model"
)

// openTestStore connects to the database named by DATABASE_URL and skips
// the test when it is unset, so the suite stays runnable without Postgres.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping database tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return NewStore(pool)
}

func testUser(email string) model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return model.User{
		ID:           uuid.NewString(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$12$notarealhashnotarealhashnotarealhashnotarealh",
		Role:         model.RoleUser,
		AuthProvider: model.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := testUser(uuid.NewString() + "@test.local")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { store.DeleteUser(ctx, user.ID) })

	got, err := store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != user.ID || got.Role != model.RoleUser {
		t.Fatalf("unexpected user: %+v", got)
	}

	got, err = store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Email != user.Email {
		t.Fatalf("unexpected email: %q", got.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := testUser(uuid.NewString() + "@test.local")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { store.DeleteUser(ctx, user.ID) })

	dup := testUser(user.Email)
	if err := store.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := testUser(uuid.NewString() + "@test.local")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { store.DeleteUser(ctx, user.ID) })

	role := model.RoleAdmin
	name := "Renamed"
	updated, err := store.UpdateUser(ctx, user.ID, UserUpdate{Role: &role, Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != model.RoleAdmin || updated.Name != "Renamed" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	// Untouched fields survive.
	if updated.Email != user.Email || updated.PasswordHash != user.PasswordHash {
		t.Fatalf("partial update clobbered other fields: %+v", updated)
	}

	if _, err := store.UpdateUser(ctx, uuid.NewString(), UserUpdate{Role: &role}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserNoFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := testUser(uuid.NewString() + "@test.local")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { store.DeleteUser(ctx, user.ID) })

	got, err := store.UpdateUser(ctx, user.ID, UserUpdate{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if got.Email != user.Email {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestDeleteUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user := testUser(uuid.NewString() + "@test.local")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := store.DeleteUser(ctx, user.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = store.DeleteUser(ctx, user.ID)
	if err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}

	if _, err := store.GetUserByID(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMenuItemRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	item := model.MenuItem{
		ID:          uuid.NewString(),
		Name:        "Test Espresso",
		Price:       120,
		Description: "round trip",
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.CreateMenuItem(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { store.DeleteMenuItem(ctx, item.ID) })

	got, err := store.GetMenuItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != item.Name || got.Price != item.Price {
		t.Fatalf("unexpected item: %+v", got)
	}

	item.Price = 135
	item.IsAvailable = false
	updated, err := store.UpdateMenuItem(ctx, item)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 135 || updated.IsAvailable {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	deleted, err := store.DeleteMenuItem(ctx, item.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	if _, err := store.GetMenuItem(ctx, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
