package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/quote"
)

// ---------- test helpers ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

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
	if err := db.AutoMigrate(&domain.User{}, &domain.Conversion{}, &domain.Favorite{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) {
	t.Helper()
	if err := db.Create(&domain.User{ID: id, Email: email, PasswordHash: "h", Name: "User"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// failCreates makes every INSERT on db fail with err.
func failCreates(t *testing.T, db *gorm.DB, err error) {
	t.Helper()
	if e := db.Callback().Create().Before("gorm:create").Register("test:fail_create", func(tx *gorm.DB) {
		_ = tx.AddError(err)
	}); e != nil {
		t.Fatalf("register callback: %v", e)
	}
}

type fakePrices struct {
	quotes     map[string]quote.Quote
	assets     []quote.Asset
	err        error
	currencies [2]string
	calls      atomic.Int32
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		quotes:     map[string]quote.Quote{},
		currencies: [2]string{"brl", "usd"},
	}
}

func (f *fakePrices) with(asset string, rates map[string]string) *fakePrices {
	q := quote.Quote{}
	for k, v := range rates {
		q[k] = decimal.RequireFromString(v)
	}
	f.quotes[asset] = q
	return f
}

func (f *fakePrices) ListAssets(ctx context.Context) ([]quote.Asset, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.assets, nil
}

func (f *fakePrices) GetPrices(ctx context.Context, id string) (quote.Quote, bool, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, false, f.err
	}
	q, ok := f.quotes[id]
	return q, ok, nil
}

func (f *fakePrices) Currencies() [2]string { return f.currencies }

type fakeGuard struct{ blocked bool }

func (g *fakeGuard) ShouldBlock() bool { return g.blocked }

var errDiskFull = errors.New("disk full")
