// Package domain defines the persistence models for users, conversions and
// favorites. These types are mapped with GORM and form the core data layer
// of the conversion service.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Soft-deleted users keep their row with a
// rewritten email so the original address can be registered again.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Email: unique login address.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Name: display name.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type User struct {
	ID           string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email"      gorm:"type:varchar(160);not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `json:"-"          gorm:"type:varchar(100);not null"`
	Name         string         `json:"name"       gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Conversion records one successful valuation of an asset amount into the
// two configured currencies. Rows are append-only.
type Conversion struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"userId"     gorm:"type:char(36);not null;index:idx_user_conversions,priority:1"`
	Asset     string    `json:"crypto"     gorm:"type:varchar(64);not null"`
	Amount    Decimal   `json:"amount"     gorm:"not null"`
	CurrencyA string    `json:"currencyA"  gorm:"type:varchar(10);not null"`
	ValueA    Decimal   `json:"valueA"     gorm:"not null"`
	CurrencyB string    `json:"currencyB"  gorm:"type:varchar(10);not null"`
	ValueB    Decimal   `json:"valueB"     gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"  gorm:"index:idx_user_conversions,priority:2"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Conversion.
func (Conversion) TableName() string { return "conversions" }

// Favorite marks an asset as followed by a user. A user can favorite an
// asset at most once; removal is a hard delete.
type Favorite struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"userId"    gorm:"type:char(36);not null;uniqueIndex:ux_favorite_user_asset,priority:1"`
	Asset     string    `json:"crypto"    gorm:"type:varchar(64);not null;uniqueIndex:ux_favorite_user_asset,priority:2"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }
