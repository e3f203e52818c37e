// Package quote is the client for the external price provider (a
// CoinGecko-compatible API). Every outbound call is guarded up-front by the
// guard.RateLimiter and every failure is routed through the guard.Shield.
package quote

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Asset is one entry of the provider's coin catalog.
type Asset struct {
	ID   string `json:"id"   example:"bitcoin"`
	Name string `json:"name" example:"Bitcoin"`
}

// Quote maps a lowercase currency code to the asset's spot rate.
type Quote map[string]decimal.Decimal

// Rate returns the rate for currency and whether it is present.
func (q Quote) Rate(currency string) (decimal.Decimal, bool) {
	r, ok := q[strings.ToLower(currency)]
	return r, ok
}

// StatusError is a non-2xx response from the provider.
type StatusError struct {
	Code     int
	Endpoint string
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("price api error (%d) on %s: %s", e.Code, e.Endpoint, e.Body)
	}
	return fmt.Sprintf("price api error (%d) on %s", e.Code, e.Endpoint)
}

// StatusCode exposes the upstream status to guard.Shield.
func (e *StatusError) StatusCode() int { return e.Code }
