package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-crypto-backend/internal/guard"
)

const (
	coinsListPath   = "/coins/list"
	simplePricePath = "/simple/price"

	// DefaultBaseURL is the public CoinGecko v3 API.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	apiKeyHeader = "x-cg-demo-api-key"
	maxErrorBody = 512
)

// DefaultCurrencies are the two fiat targets used when none are configured.
var DefaultCurrencies = [2]string{"brl", "usd"}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAPIKey sends key in the provider's demo API key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

// WithCurrencies sets the two target currency codes.
func WithCurrencies(a, b string) Option {
	return func(c *Client) {
		a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
		if a != "" && b != "" {
			c.currencies = [2]string{a, b}
		}
	}
}

// WithCache enables catalog caching for ListAssets.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l.With().Str("component", "quote_client").Logger() }
}

// Client talks to the price provider.
type Client struct {
	baseURL    string
	http       *http.Client
	apiKey     string
	currencies [2]string
	cache      Cache
	limiter    *guard.RateLimiter
	shield     *guard.Shield
	log        zerolog.Logger
}

// New builds a Client for baseURL. limiter is consulted before every call and
// shield classifies every failure.
func New(baseURL string, limiter *guard.RateLimiter, shield *guard.Shield, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		currencies: DefaultCurrencies,
		limiter:    limiter,
		shield:     shield,
		log:        log.With().Str("component", "quote_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Currencies returns the configured target currency codes.
func (c *Client) Currencies() [2]string { return c.currencies }

// ListAssets returns the provider's coin catalog as {id, name} pairs in
// upstream order.
func (c *Client) ListAssets(ctx context.Context) ([]Asset, error) {
	ctx, span := otel.Tracer("quote/Client").Start(ctx, "ListAssets")
	defer span.End()

	if err := c.limiter.ThrowIfBlocked(); err != nil {
		span.SetStatus(codes.Error, "blocked")
		return nil, err
	}

	if c.cache != nil {
		assets, ok, err := c.cache.GetAssets(ctx)
		switch {
		case err != nil:
			cacheLookups.WithLabelValues("error").Inc()
			c.log.Warn().Err(err).Msg("asset cache read failed")
		case ok:
			cacheLookups.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return assets, nil
		default:
			cacheLookups.WithLabelValues("miss").Inc()
		}
	}

	body, err := c.get(ctx, coinsListPath, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list assets failed")
		return nil, c.shield.Handle(err)
	}

	assets := make([]Asset, 0)
	if err := json.Unmarshal(body, &assets); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coinsListPath, err)
	}
	span.SetAttributes(attribute.Int("assets.count", len(assets)))

	if c.cache != nil {
		if err := c.cache.SetAssets(ctx, assets); err != nil {
			c.log.Warn().Err(err).Msg("asset cache write failed")
		}
	}
	return assets, nil
}

// GetPrices returns assetID's rates in the configured currencies. found is
// false, with a nil error, when the provider's response has no entry for
// assetID.
func (c *Client) GetPrices(ctx context.Context, assetID string) (Quote, bool, error) {
	ctx, span := otel.Tracer("quote/Client").Start(ctx, "GetPrices",
		trace.WithAttributes(attribute.String("asset.id", assetID)),
	)
	defer span.End()

	if err := c.limiter.ThrowIfBlocked(); err != nil {
		span.SetStatus(codes.Error, "blocked")
		return nil, false, err
	}

	q := url.Values{}
	q.Set("ids", assetID)
	q.Set("vs_currencies", c.currencies[0]+","+c.currencies[1])

	body, err := c.get(ctx, simplePricePath, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get prices failed")
		return nil, false, c.shield.Handle(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, false, fmt.Errorf("decode %s: invalid json", simplePricePath)
	}

	entry := gjson.GetBytes(body, gjson.Escape(assetID))
	if !entry.Exists() || !entry.IsObject() {
		span.SetAttributes(attribute.Bool("asset.found", false))
		return nil, false, nil
	}

	out := make(Quote, 2)
	var parseErr error
	entry.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			return true
		}
		rate, err := decimal.NewFromString(value.Raw)
		if err != nil {
			parseErr = fmt.Errorf("parse %s rate for %s: %w", key.String(), assetID, err)
			return false
		}
		out[strings.ToLower(key.String())] = rate
		return true
	})
	if parseErr != nil {
		return nil, false, parseErr
	}
	span.SetAttributes(attribute.Bool("asset.found", true))
	return out, true, nil
}

// get performs a GET against the provider and returns the body of a 2xx
// response. Non-2xx responses become *StatusError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "go-crypto-backend/1.0")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	upstreamLat.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		upstreamReqs.WithLabelValues(path, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	upstreamReqs.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("price provider returned an error")
		return nil, &StatusError{Code: resp.StatusCode, Endpoint: path, Body: errorBody(payload)}
	}
	return payload, nil
}

// errorBody extracts a short, single-line description from an error payload.
func errorBody(payload []byte) string {
	if msg := gjson.GetBytes(payload, "status.error_message"); msg.Exists() {
		return msg.String()
	}
	if msg := gjson.GetBytes(payload, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	s := strings.TrimSpace(string(payload))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return strings.ReplaceAll(s, "\n", " ")
}
