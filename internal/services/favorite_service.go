package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/repo"
)

// FavoriteService manages the set of assets a user follows.
type FavoriteService struct {
	DB *gorm.DB
}

// Add records asset as a favorite of userID. The existence check and insert
// run in one transaction; a unique violation from a racing insert is reported
// as ErrFavoriteExists too.
func (s *FavoriteService) Add(ctx context.Context, userID, asset string) (*domain.Favorite, error) {
	asset = NormalizeAsset(asset)
	ctx, span := otel.Tracer("services/FavoriteService").Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("asset.id", asset),
		),
	)
	defer span.End()

	var out *domain.Favorite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repo.FavoriteExists(ctx, tx, userID, asset)
		if err != nil {
			return err
		}
		if exists {
			return ErrFavoriteExists
		}
		f, err := repo.CreateFavorite(ctx, tx, userID, asset)
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrFavoriteExists
		}
		if err != nil {
			return err
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes every favorite row of userID for asset and returns how many
// were removed. Removing something that is not a favorite is not an error.
func (s *FavoriteService) Remove(ctx context.Context, userID, asset string) (int64, error) {
	asset = NormalizeAsset(asset)
	ctx, span := otel.Tracer("services/FavoriteService").Start(ctx, "Remove",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("asset.id", asset),
		),
	)
	defer span.End()

	n, err := repo.DeleteFavorites(ctx, s.DB, userID, asset)
	span.SetAttributes(attribute.Int64("favorites.removed", n))
	return n, err
}

// List returns the favorites of userID, newest first.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	ctx, span := otel.Tracer("services/FavoriteService").Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()
	return repo.ListFavorites(ctx, s.DB, userID)
}
