package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

// ConversionStats returns the number of conversions recorded for userID and
// the newest CreatedAt among them. It backs the history ETag. When the user
// has no conversions, count is 0 and latest is nil.
func ConversionStats(ctx context.Context, db *gorm.DB, userID string) (count int64, latest *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Conversion{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Avoid MAX() which comes back as TEXT in SQLite.
	var row struct {
		CreatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.Conversion{}).
		Where("user_id = ?", userID).
		Select("created_at").
		Order("created_at DESC").
		Limit(1).
		Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
