package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

func newConversion(userID, asset string, at time.Time) *domain.Conversion {
	return &domain.Conversion{
		UserID:    userID,
		Asset:     asset,
		Amount:    domain.NewDecimal(decimal.NewFromInt(2)),
		CurrencyA: "brl",
		ValueA:    domain.NewDecimal(decimal.NewFromInt(200)),
		CurrencyB: "usd",
		ValueB:    domain.NewDecimal(decimal.NewFromInt(100)),
		CreatedAt: at,
	}
}

func TestCreateConversion_AssignsIDAndRoundTrips(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	c := newConversion("u1", "bitcoin", baseTime)
	if err := CreateConversion(ctx, db, c); err != nil {
		t.Fatalf("CreateConversion: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("ID not assigned")
	}

	got, err := GetConversion(ctx, db, c.ID, "u1")
	if err != nil {
		t.Fatalf("GetConversion: %v", err)
	}
	if got.Asset != "bitcoin" || !got.ValueA.Equal(decimal.NewFromInt(200)) || !got.ValueB.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected conversion: %+v", got)
	}

	if _, err := GetConversion(ctx, db, c.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user's conversion must be hidden, got %v", err)
	}
}

func TestListConversions_NewestFirstAndScoped(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	for _, c := range []*domain.Conversion{
		newConversion("u1", "bitcoin", baseTime),
		newConversion("u1", "ethereum", baseTime.Add(2*time.Hour)),
		newConversion("u1", "aave", baseTime.Add(time.Hour)),
		newConversion("u2", "dogecoin", baseTime.Add(3*time.Hour)),
	} {
		if err := CreateConversion(ctx, db, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	out, err := ListConversions(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListConversions: %v", err)
	}
	want := []string{"ethereum", "aave", "bitcoin"}
	if len(out) != len(want) {
		t.Fatalf("got %d rows, want %d", len(out), len(want))
	}
	for i, w := range want {
		if out[i].Asset != w {
			t.Fatalf("row %d = %s, want %s", i, out[i].Asset, w)
		}
	}

	empty, err := ListConversions(ctx, db, "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v err=%v", empty, err)
	}
}

func TestListConversions_TieBrokenByID(t *testing.T) {
	db := newTestDB(t, allModels()...)
	ctx := context.Background()

	a := newConversion("u1", "a", baseTime)
	a.ID = "00000000-0000-0000-0000-00000000000a"
	b := newConversion("u1", "b", baseTime)
	b.ID = "00000000-0000-0000-0000-00000000000b"
	_ = CreateConversion(ctx, db, a)
	_ = CreateConversion(ctx, db, b)

	out, err := ListConversions(ctx, db, "u1")
	if err != nil || len(out) != 2 {
		t.Fatalf("ListConversions: %v %v", out, err)
	}
	if out[0].ID != b.ID {
		t.Fatalf("tie must order by id desc, got %s first", out[0].ID)
	}
}
