package domain

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDecimal_ColumnTypePerDialect(t *testing.T) {
	lite := newDomainDB(t)
	if got := (Decimal{}).GormDBDataType(lite, nil); got != "text" {
		t.Fatalf("sqlite column type = %q, want text", got)
	}

	mockDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })
	pg, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if got := (Decimal{}).GormDBDataType(pg, nil); got != "numeric" {
		t.Fatalf("postgres column type = %q, want numeric", got)
	}
}

func TestDecimal_MigratedAsText(t *testing.T) {
	db := newDomainDB(t)
	cols, err := db.Migrator().ColumnTypes(&Conversion{})
	if err != nil {
		t.Fatalf("column types: %v", err)
	}
	seen := 0
	for _, c := range cols {
		switch c.Name() {
		case "amount", "value_a", "value_b":
			seen++
			if !strings.EqualFold(c.DatabaseTypeName(), "text") {
				t.Fatalf("%s declared as %q, want text", c.Name(), c.DatabaseTypeName())
			}
		}
	}
	if seen != 3 {
		t.Fatalf("found %d decimal columns, want 3", seen)
	}
}

func TestConversion_HighPrecisionRoundTrip(t *testing.T) {
	db := newDomainDB(t)
	if err := db.Create(&User{ID: "u1", Email: "a@b.com", PasswordHash: "h", Name: "Ann"}).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}

	amount := "1.23456789"
	valueA := "426763.11149520750190521"
	valueB := "0.000000000000000000000123456789"
	conv := &Conversion{
		ID:        "c1",
		UserID:    "u1",
		Asset:     "bitcoin",
		Amount:    NewDecimal(decimal.RequireFromString(amount)),
		CurrencyA: "brl",
		ValueA:    NewDecimal(decimal.RequireFromString(valueA)),
		CurrencyB: "usd",
		ValueB:    NewDecimal(decimal.RequireFromString(valueB)),
	}
	if err := db.Create(conv).Error; err != nil {
		t.Fatalf("insert conversion: %v", err)
	}

	var got Conversion
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Amount.String() != amount || got.ValueA.String() != valueA || got.ValueB.String() != valueB {
		t.Fatalf("stored values drifted: %s %s %s", got.Amount, got.ValueA, got.ValueB)
	}
}
