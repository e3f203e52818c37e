// Package guard shields the external price provider: a RateLimiter that blocks
// outbound calls for a fixed window after the provider throttles us, and a
// Shield that classifies failed calls and arms that block.
package guard

import "errors"

var (
	// ErrRateLimited is returned while the block window is active. No outbound
	// call is attempted when this error is produced.
	ErrRateLimited = errors.New("requests to the price provider are temporarily blocked due to rate limits, please try again later")

	// ErrServiceUnavailable replaces an upstream 429 or 503 after the block
	// window has been armed.
	ErrServiceUnavailable = errors.New("price provider rate limit exceeded or service unavailable, requests are blocked temporarily")
)
