// Package services – ConversionService
//
// This file implements ConversionService, which values an amount of a crypto
// asset in the two configured fiat currencies and records every successful
// valuation. The upstream block guard is consulted before any outbound call,
// so a blocked provider is never contacted.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the user id and asset id.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/guard"
	"github.com/tbourn/go-crypto-backend/internal/quote"
	"github.com/tbourn/go-crypto-backend/internal/repo"
)

// PriceSource is the subset of the quote client the service depends on.
type PriceSource interface {
	ListAssets(ctx context.Context) ([]quote.Asset, error)
	GetPrices(ctx context.Context, assetID string) (quote.Quote, bool, error)
	Currencies() [2]string
}

// BlockGuard reports whether outbound price calls are currently suspended.
type BlockGuard interface {
	ShouldBlock() bool
}

// ConversionService converts asset amounts and keeps the conversion history.
type ConversionService struct {
	DB      *gorm.DB
	Prices  PriceSource
	Limiter BlockGuard

	// IdempotencyTTL bounds how long an Idempotency-Key replays its result.
	// Zero means 24h.
	IdempotencyTTL time.Duration

	// Now is used for conversion timestamps; nil means time.Now.
	Now func() time.Time
}

var assetFolder = cases.Lower(language.Und)

// NormalizeAsset trims and lower-cases an asset id the way the provider
// spells them.
func NormalizeAsset(asset string) string {
	return assetFolder.String(strings.TrimSpace(asset))
}

// ListAssets returns the provider's asset catalog.
func (s *ConversionService) ListAssets(ctx context.Context) ([]quote.Asset, error) {
	ctx, span := otel.Tracer("services/ConversionService").Start(ctx, "ListAssets")
	defer span.End()

	assets, err := s.Prices.ListAssets(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("assets.count", len(assets)))
	return assets, nil
}

// Convert values amount of asset in the configured currencies and records the
// result for userID.
//
// Steps:
//  1. Guard: a blocked provider yields guard.ErrRateLimited with no outbound call.
//  2. Quote: provider errors propagate unchanged.
//  3. Resolve: an unknown asset yields ErrAssetNotFound and nothing is recorded.
//  4. Compute: value = amount * rate for each currency, in exact decimal arithmetic.
//  5. Persist: storage failures are wrapped in ErrPersistence.
func (s *ConversionService) Convert(ctx context.Context, userID, asset string, amount decimal.Decimal) (*domain.Conversion, error) {
	asset = NormalizeAsset(asset)
	ctx, span := otel.Tracer("services/ConversionService").Start(ctx, "Convert",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("asset.id", asset),
		),
	)
	defer span.End()

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if s.Limiter != nil && s.Limiter.ShouldBlock() {
		span.SetStatus(codes.Error, "price provider blocked")
		return nil, guard.ErrRateLimited
	}

	q, found, err := s.Prices.GetPrices(ctx, asset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, asset)
	}

	cur := s.Prices.Currencies()
	rateA, okA := q.Rate(cur[0])
	rateB, okB := q.Rate(cur[1])
	if !okA || !okB {
		return nil, fmt.Errorf("%w: %s", ErrQuoteIncomplete, asset)
	}

	c := &domain.Conversion{
		UserID:    userID,
		Asset:     asset,
		Amount:    domain.NewDecimal(amount),
		CurrencyA: cur[0],
		ValueA:    domain.NewDecimal(amount.Mul(rateA)),
		CurrencyB: cur[1],
		ValueB:    domain.NewDecimal(amount.Mul(rateB)),
		CreatedAt: s.now(),
	}
	if err := repo.CreateConversion(ctx, s.DB, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist conversion")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return c, nil
}

// History returns the conversions recorded for userID, newest first.
func (s *ConversionService) History(ctx context.Context, userID string) ([]domain.Conversion, error) {
	ctx, span := otel.Tracer("services/ConversionService").Start(ctx, "History",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()
	return repo.ListConversions(ctx, s.DB, userID)
}

// HistoryStats returns the row count and newest timestamp of the history,
// used to derive a cache validator.
func (s *ConversionService) HistoryStats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return repo.ConversionStats(ctx, s.DB, userID)
}

// RequestFingerprint is the canonical form of a conversion request that an
// Idempotency-Key is bound to.
func RequestFingerprint(asset string, amount decimal.Decimal) string {
	return NormalizeAsset(asset) + ":" + amount.String()
}

// Replay returns the conversion previously produced for (userID, key) while
// the key is still within its TTL. ok is false when there is nothing to replay.
// A key stored for a different asset or amount yields ErrIdempotencyMismatch;
// records written before fingerprints existed carry none and always match.
func (s *ConversionService) Replay(ctx context.Context, userID, key, asset string, amount decimal.Decimal) (*domain.Conversion, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, nil
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, key, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if rec.Request != "" && rec.Request != RequestFingerprint(asset, amount) {
		return nil, false, ErrIdempotencyMismatch
	}
	c, err := repo.GetConversion(ctx, s.DB, rec.ConversionID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// HasReplay reports whether a live idempotency record exists for (userID, key).
func (s *ConversionService) HasReplay(ctx context.Context, userID, key string, now time.Time) (bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return rec != nil, err
}

// Remember binds key to the conversion c produced for userID. A concurrent
// request that stored the same key first wins; that case is not an error.
func (s *ConversionService) Remember(ctx context.Context, userID, key string, c *domain.Conversion) error {
	if strings.TrimSpace(key) == "" || c == nil {
		return nil
	}
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, &domain.Idempotency{
		UserID:       userID,
		Key:          key,
		ConversionID: c.ID,
		Request:      RequestFingerprint(c.Asset, c.Amount.Decimal),
		Status:       http.StatusOK,
	}, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *ConversionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
