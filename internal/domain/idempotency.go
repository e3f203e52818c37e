package domain

import "time"

// Idempotency remembers the conversion produced for a client-supplied
// Idempotency-Key, keyed by (user_id, key). A retried request with the same
// key replays the stored conversion instead of calling the price API again.
// Request holds the canonical asset and amount the key was first used with.
type Idempotency struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	UserID       string    `gorm:"type:char(36);not null;uniqueIndex:ux_idem_user_key,priority:1"`
	Key          string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_idem_user_key,priority:2"`
	ConversionID string    `gorm:"type:char(36);not null"`
	Request      string    `gorm:"not null;default:''"`
	Status       int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
