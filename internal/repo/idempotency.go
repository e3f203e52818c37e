package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

// GetIdempotency returns a non-expired record for (userID, key) or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND key = ? AND expires_at > ?", userID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts rec, filling its id and timestamps, and returns
// ErrDuplicate on unique violation. Expired rows for the same (UserID, Key)
// are purged first so keys can be reused.
func CreateIdempotency(ctx context.Context, db *gorm.DB, rec *domain.Idempotency, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).
		Where("user_id = ? AND key = ? AND expires_at <= ?", rec.UserID, rec.Key, now).
		Delete(&domain.Idempotency{}).Error; err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.ExpiresAt = now.Add(ttl)
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
