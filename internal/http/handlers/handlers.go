package handlers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/quote"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// ConversionService converts asset amounts and serves conversion history.
// Implementations must honor ctx cancellation.
type ConversionService interface {
	ListAssets(ctx context.Context) ([]quote.Asset, error)
	Convert(ctx context.Context, userID, asset string, amount decimal.Decimal) (*domain.Conversion, error)
	History(ctx context.Context, userID string) ([]domain.Conversion, error)
	// HistoryStats returns the history size and newest timestamp for ETags.
	HistoryStats(ctx context.Context, userID string) (int64, *time.Time, error)
	// Replay returns the stored result for an Idempotency-Key, if any. A key
	// first used for another asset or amount yields services.ErrIdempotencyMismatch.
	Replay(ctx context.Context, userID, key, asset string, amount decimal.Decimal) (*domain.Conversion, bool, error)
	// Remember binds an Idempotency-Key to a completed conversion.
	Remember(ctx context.Context, userID, key string, conv *domain.Conversion) error
}

// FavoriteService manages a user's followed assets.
type FavoriteService interface {
	Add(ctx context.Context, userID, asset string) (*domain.Favorite, error)
	Remove(ctx context.Context, userID, asset string) (int64, error)
	List(ctx context.Context, userID string) ([]domain.Favorite, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
}

// UserService exposes account operations on behalf of an authenticated
// subject.
type UserService interface {
	Profile(ctx context.Context, subject string) (*domain.User, error)
	Get(ctx context.Context, subject, id string) (*domain.User, error)
	Update(ctx context.Context, subject, id string, name *string) (*domain.User, error)
	Delete(ctx context.Context, subject, id string) error
}

// Handlers groups the HTTP endpoints. It depends only on the service
// interfaces above.
type Handlers struct {
	convSvc  ConversionService
	favSvc   FavoriteService
	authSvc  AuthService
	usersSvc UserService
}

// New constructs Handlers bound to the given services.
func New(conv ConversionService, fav FavoriteService, authSvc AuthService, users UserService) *Handlers {
	return &Handlers{convSvc: conv, favSvc: fav, authSvc: authSvc, usersSvc: users}
}
