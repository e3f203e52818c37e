package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/auth"
	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/repo"
)

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User        *domain.User
	AccessToken string
}

// AuthService registers users and exchanges credentials for access tokens.
type AuthService struct {
	DB     *gorm.DB
	Hasher *auth.Hasher
	Tokens *auth.Tokens
}

// Signup creates an account and returns it with a fresh token. The email
// must not belong to an active user; soft-deleted users do not count.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Signup")
	defer span.End()

	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	_, err := repo.FindActiveUserByEmail(ctx, s.DB, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.CreateUser(ctx, s.DB, name, email, hash)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login verifies email and password. Unknown emails and wrong passwords both
// yield ErrInvalidCredentials after comparable bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "Login")
	defer span.End()

	u, err := repo.FindActiveUserByEmail(ctx, s.DB, strings.TrimSpace(email))
	if errors.Is(err, repo.ErrNotFound) {
		s.Hasher.VerifyDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.Hasher.Verify(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, AccessToken: tok}, nil
}
