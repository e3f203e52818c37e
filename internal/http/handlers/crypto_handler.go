// Crypto HTTP handlers.
//
//   - GET  /crypto/list     (asset catalog)
//   - POST /crypto/convert  (value an amount, Idempotency-Key aware)
//   - GET  /crypto/history  (conversions, weak ETag)
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-crypto-backend/internal/domain"
	"github.com/tbourn/go-crypto-backend/internal/http/middleware"
	"github.com/tbourn/go-crypto-backend/internal/services"
)

// ConvertRequest is the JSON payload for POST /crypto/convert.
type ConvertRequest struct {
	// Crypto is the provider's asset id, e.g. "bitcoin".
	Crypto string `json:"crypto" binding:"required,min=3,max=30" example:"bitcoin"`
	// Amount accepts a JSON number or a decimal string.
	Amount decimal.Decimal `json:"amount" binding:"gte=0.01" swaggertype:"number" example:"1.5"`
}

// ConvertResponse maps "value" + upper-cased currency code to the value,
// e.g. {"valueBRL": 123.45, "valueUSD": 65.43}.
type ConvertResponse map[string]json.Number

// HistoryItem is one conversion as returned by GET /crypto/history: id,
// crypto, amount, createdAt and one "value<CUR>" key per currency.
type HistoryItem map[string]any

var currencyUpper = cases.Upper(language.Und)

func valueKey(currency string) string {
	return "value" + currencyUpper.String(currency)
}

func convertResponse(conv *domain.Conversion) ConvertResponse {
	return ConvertResponse{
		valueKey(conv.CurrencyA): json.Number(conv.ValueA.String()),
		valueKey(conv.CurrencyB): json.Number(conv.ValueB.String()),
	}
}

func historyItem(conv domain.Conversion) HistoryItem {
	return HistoryItem{
		"id":                     conv.ID,
		"crypto":                 conv.Asset,
		"amount":                 json.Number(conv.Amount.String()),
		valueKey(conv.CurrencyA): json.Number(conv.ValueA.String()),
		valueKey(conv.CurrencyB): json.Number(conv.ValueB.String()),
		"createdAt":              conv.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ListCryptos godoc
// @ID          listCryptos
// @Summary     List cryptocurrencies
// @Description Returns the provider's asset catalog as id/name pairs.
// @Tags        Crypto
// @Produce     json
// @Security    BearerAuth
// @Success     200  {array}   quote.Asset
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     429  {object}  handlers.ErrorResponse  "Provider calls blocked"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider error"
// @Failure     503  {object}  handlers.ErrorResponse  "Provider throttled"
// @Router      /crypto/list [get]
func (h *Handlers) ListCryptos(c *gin.Context) {
	assets, err := h.convSvc.ListAssets(c.Request.Context())
	if err != nil {
		writeError(c, err, "")
		return
	}
	ok(c, http.StatusOK, assets)
}

// Convert godoc
// @ID          convertCrypto
// @Summary     Convert cryptocurrency
// @Description Values an amount of an asset in the two configured currencies and records it.
// @Description An Idempotency-Key replays the stored result for 24h without a new conversion.
// @Tags        Crypto
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                   false  "Idempotency key for safe retries"
// @Param       body             body    handlers.ConvertRequest  true   "Conversion payload"
// @Success     200  {object}  handlers.ConvertResponse
// @Header      200  {string}  Idempotency-Replayed  "true when served from a stored result"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Crypto not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Idempotency-Key reused for a different request"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Persistence error"
// @Failure     502  {object}  handlers.ErrorResponse  "Provider error"
// @Failure     503  {object}  handlers.ErrorResponse  "Provider throttled"
// @Router      /crypto/convert [post]
func (h *Handlers) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	key, hasKey := middleware.GetIdempotencyKey(c)

	if hasKey && middleware.IsReplay(c) {
		prev, found, err := h.convSvc.Replay(ctx, uid, key, req.Crypto, req.Amount)
		if errors.Is(err, services.ErrIdempotencyMismatch) {
			writeError(c, err, "")
			return
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotent replay failed")
		}
		if found {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusOK, convertResponse(prev))
			return
		}
	}

	conv, err := h.convSvc.Convert(ctx, uid, req.Crypto, req.Amount)
	if err != nil {
		msg := ""
		if errors.Is(err, services.ErrAssetNotFound) {
			msg = fmt.Sprintf("Crypto %s not found", strings.TrimSpace(req.Crypto))
		}
		writeError(c, err, msg)
		return
	}

	if hasKey {
		if err := h.convSvc.Remember(ctx, uid, key, conv); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency key")
		}
	}
	ok(c, http.StatusOK, convertResponse(conv))
}

// History godoc
// @ID          conversionHistory
// @Summary     Conversion history
// @Description Returns the caller's conversions, newest first. Supports a weak ETag via If-None-Match.
// @Tags        Crypto
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if the ETag matches"
// @Success     200  {array}   handlers.HistoryItem
// @Header      200  {string}  ETag  "Weak ETag for the current history"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /crypto/history [get]
func (h *Handlers) History(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	// ETag pre-check (best effort).
	if count, latest, err := h.convSvc.HistoryStats(ctx, uid); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"history:%s:%d:%d"`, uid, count, ts)
		c.Header("ETag", etag)
		c.Header("Cache-Control", "private, no-cache")
		if etagMatch(c.GetHeader("If-None-Match"), etag) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.convSvc.History(ctx, uid)
	if err != nil {
		writeError(c, err, "")
		return
	}
	out := make([]HistoryItem, 0, len(items))
	for _, it := range items {
		out = append(out, historyItem(it))
	}
	ok(c, http.StatusOK, out)
}

// etagMatch reports whether an If-None-Match value matches etag. Weak
// comparison: the W/ prefix is ignored on both sides.
func etagMatch(inm, etag string) bool {
	if inm == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, cand := range strings.Split(inm, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || strings.TrimPrefix(cand, "W/") == want {
			return true
		}
	}
	return false
}
