package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

// FavoriteExists reports whether userID already follows asset.
func FavoriteExists(ctx context.Context, db *gorm.DB, userID, asset string) (bool, error) {
	var f domain.Favorite
	err := db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND asset = ?", userID, asset).
		Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateFavorite inserts a favorite row. A clash on ux_favorite_user_asset
// returns ErrDuplicate.
func CreateFavorite(ctx context.Context, db *gorm.DB, userID, asset string) (*domain.Favorite, error) {
	f := &domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		Asset:     asset,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return f, nil
}

// DeleteFavorites hard-deletes every row matching (userID, asset) and
// returns how many were removed.
func DeleteFavorites(ctx context.Context, db *gorm.DB, userID, asset string) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND asset = ?", userID, asset).
		Delete(&domain.Favorite{})
	return res.RowsAffected, res.Error
}

// ListFavorites returns the favorites of userID, newest first.
func ListFavorites(ctx context.Context, db *gorm.DB, userID string) ([]domain.Favorite, error) {
	out := []domain.Favorite{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}
