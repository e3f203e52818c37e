package repo

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func allModels() []any {
	return []any{&domain.User{}, &domain.Conversion{}, &domain.Favorite{}, &domain.Idempotency{}}
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: email, PasswordHash: "hash", Name: "User " + id}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

var baseTime = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
