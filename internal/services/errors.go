// Package services defines the business logic for conversions, favorites,
// authentication and user accounts. This file centralizes the service-level
// error values so that they can be returned consistently by service methods
// and checked by callers.
//
// Translation into HTTP status codes happens in the handler layer.
package services

import "errors"

// Conversion-related errors.
var (
	// ErrAssetNotFound is returned when the price provider has no quote for
	// the requested asset id.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrInvalidAmount is returned when the amount to convert is not positive.
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrQuoteIncomplete is returned when the provider answered for the asset
	// but omitted one of the configured currencies.
	ErrQuoteIncomplete = errors.New("quote is missing a configured currency")

	// ErrPersistence wraps a storage failure while recording a conversion.
	ErrPersistence = errors.New("failed to persist conversion")

	// ErrIdempotencyMismatch is returned when an Idempotency-Key is reused
	// for a request with a different asset or amount.
	ErrIdempotencyMismatch = errors.New("idempotency key was used for a different request")
)

// Favorite-related errors.
var (
	// ErrFavoriteExists is returned when the user already follows the asset.
	ErrFavoriteExists = errors.New("favorite already exists")
)

// Account-related errors.
var (
	// ErrEmailTaken is returned on signup when an active user owns the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login for an unknown email or a
	// wrong password. The two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the caller targets another user's account.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound indicates that the user does not exist or was deleted.
	ErrUserNotFound = errors.New("user not found")
)
