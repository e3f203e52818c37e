package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestFavorite_AddListRemove(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	svc := &FavoriteService{DB: db}
	ctx := context.Background()

	f, err := svc.Add(ctx, "u1", "bitcoin")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if f.UserID != "u1" || f.Asset != "bitcoin" {
		t.Fatalf("unexpected favorite: %+v", f)
	}

	if _, err := svc.Add(ctx, "u1", "bitcoin"); !errors.Is(err, ErrFavoriteExists) {
		t.Fatalf("expected ErrFavoriteExists, got %v", err)
	}
	if _, err := svc.Add(ctx, "u1", " BITCOIN "); !errors.Is(err, ErrFavoriteExists) {
		t.Fatalf("normalized duplicate must conflict, got %v", err)
	}
	if _, err := svc.Add(ctx, "u1", "ethereum"); err != nil {
		t.Fatalf("Add ethereum: %v", err)
	}

	list, err := svc.List(ctx, "u1")
	if err != nil || len(list) != 2 {
		t.Fatalf("List: %v err=%v", list, err)
	}

	n, err := svc.Remove(ctx, "u1", "bitcoin")
	if err != nil || n != 1 {
		t.Fatalf("Remove: n=%d err=%v", n, err)
	}
	n, err = svc.Remove(ctx, "u1", "bitcoin")
	if err != nil || n != 0 {
		t.Fatalf("Remove again: n=%d err=%v", n, err)
	}
}

func TestFavorite_Add_RacingInsertMapsToConflict(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1", "u1@example.com")
	svc := &FavoriteService{DB: db}

	// Simulate a concurrent writer: the pre-check passes but the insert hits
	// the unique index.
	if err := db.Callback().Create().Before("gorm:create").Register("test:race", func(tx *gorm.DB) {
		if tx.Statement.Table == "favorites" {
			_ = tx.AddError(errors.New("UNIQUE constraint failed: favorites.user_id, favorites.asset"))
		}
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Add(context.Background(), "u1", "bitcoin"); !errors.Is(err, ErrFavoriteExists) {
		t.Fatalf("expected ErrFavoriteExists, got %v", err)
	}
}

func TestFavorite_Add_StorageError(t *testing.T) {
	db := newTestDB(t)
	svc := &FavoriteService{DB: db}
	failCreates(t, db, errDiskFull)

	_, err := svc.Add(context.Background(), "u1", "bitcoin")
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
