package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

// CreateConversion inserts c, assigning an ID and CreatedAt when unset.
func CreateConversion(ctx context.Context, db *gorm.DB, c *domain.Conversion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetConversion fetches a conversion by id scoped to its owner.
func GetConversion(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Conversion, error) {
	var c domain.Conversion
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversions returns every conversion of userID, newest first. Ties on
// created_at are broken by id so the order is stable.
func ListConversions(ctx context.Context, db *gorm.DB, userID string) ([]domain.Conversion, error) {
	out := []domain.Conversion{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}
