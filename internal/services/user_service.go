package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/repo"
)

// UserService exposes account operations. Every operation on an explicit id
// requires the caller (subject) to be that user; the ownership check runs
// before any lookup so foreign ids never leak existence.
type UserService struct {
	DB *gorm.DB
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, subject string) (*domain.User, error) {
	return s.load(ctx, subject)
}

// Get returns user id on behalf of subject.
func (s *UserService) Get(ctx context.Context, subject, id string) (*domain.User, error) {
	if subject != id {
		return nil, ErrForbidden
	}
	return s.load(ctx, id)
}

// Update applies the optional name change and returns the stored account.
// A nil name leaves the account untouched.
func (s *UserService) Update(ctx context.Context, subject, id string, name *string) (*domain.User, error) {
	ctx, span := s.span(ctx, "Update", id)
	defer span.End()

	if subject != id {
		return nil, ErrForbidden
	}
	if name != nil {
		if err := repo.UpdateUserName(ctx, s.DB, id, strings.TrimSpace(*name)); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	return s.load(ctx, id)
}

// Delete soft-deletes the account: the email is rewritten so the address can
// be registered again and the row is hidden from every lookup.
func (s *UserService) Delete(ctx context.Context, subject, id string) error {
	ctx, span := s.span(ctx, "Delete", id)
	defer span.End()

	if subject != id {
		return ErrForbidden
	}
	err := repo.SoftDeleteUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) load(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) span(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return otel.Tracer("services/UserService").Start(ctx, name,
		trace.WithAttributes(attribute.String("user.id", id)),
	)
}
