// Package repo implements the data persistence layer for domain entities,
// backed by GORM.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound (an alias of gorm.ErrRecordNotFound).
//   - Unique violations on insert surface as ErrDuplicate.
//   - Every other DB error is propagated unchanged.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
)

// CreateUser inserts a new user with a generated UUID. A clash on the email
// index returns ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// FindActiveUserByEmail returns the non-deleted user registered with email.
func FindActiveUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the non-deleted user with id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserName changes the display name of a non-deleted user. It returns
// ErrNotFound when no active row matches.
func UpdateUserName(ctx context.Context, db *gorm.DB, id, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteUser rewrites the email to "<email>_deleted_<id>" and stamps
// deleted_at in a single statement, freeing the address for a new signup.
func SoftDeleteUser(ctx context.Context, db *gorm.DB, id string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"email":      gorm.Expr("email || ?", fmt.Sprintf("_deleted_%s", id)),
			"deleted_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
