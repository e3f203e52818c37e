package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Decimal is an arbitrary-precision amount stored without rounding.
//
// SQLite gives numeric columns NUMERIC affinity and folds long decimals into
// float64, so amounts are kept as text there. Postgres uses numeric with no
// declared precision or scale.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps d for persistence.
func NewDecimal(d decimal.Decimal) Decimal { return Decimal{Decimal: d} }

// GormDBDataType picks the column type per dialect.
func (Decimal) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "numeric"
	default:
		return "text"
	}
}
