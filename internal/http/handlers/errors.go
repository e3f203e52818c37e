package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crypto-backend/internal/guard"
	"github.com/tbourn/go-crypto-backend/internal/quote"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// Error codes carried in ErrorResponse.Code.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeRateLimited        = "too_many_requests"
	ErrCodeInternal           = "internal_error"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeAssetNotFound      = "asset_not_found"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodePersistence        = "persistence_error"
	ErrCodeUpstream           = "upstream_error"
	ErrCodeIdempotencyReuse   = "idempotency_key_reused"
)

// classify maps a service or upstream error to its HTTP status and code.
func classify(err error) (int, string) {
	var (
		statusErr *quote.StatusError
		urlErr    *url.Error
	)
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrFavoriteExists):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, services.ErrAssetNotFound):
		return http.StatusNotFound, ErrCodeAssetNotFound
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, guard.ErrRateLimited):
		return http.StatusTooManyRequests, ErrCodeRateLimited
	case errors.Is(err, guard.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case errors.Is(err, services.ErrIdempotencyMismatch):
		return http.StatusUnprocessableEntity, ErrCodeIdempotencyReuse
	case errors.Is(err, services.ErrPersistence):
		return http.StatusInternalServerError, ErrCodePersistence
	case errors.Is(err, services.ErrQuoteIncomplete),
		errors.As(err, &statusErr),
		errors.As(err, &urlErr):
		return http.StatusBadGateway, ErrCodeUpstream
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// writeError classifies err and fails the request. msg overrides the default
// client message; server-side details never reach the client.
func writeError(c *gin.Context, err error, msg string) {
	status, code := classify(err)
	_ = c.Error(err)

	if msg == "" {
		switch code {
		case ErrCodeInternal:
			msg = "internal server error"
		case ErrCodePersistence:
			msg = "failed to save conversion"
		case ErrCodeUpstream:
			msg = "price provider request failed"
		case ErrCodeRateLimited:
			msg = guard.ErrRateLimited.Error()
		case ErrCodeServiceUnavailable:
			msg = guard.ErrServiceUnavailable.Error()
		default:
			msg = err.Error()
		}
	}
	fail(c, status, code, msg)
}
