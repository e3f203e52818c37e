package guard

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StatusCoder is implemented by errors that carry the HTTP status code of a
// failed upstream call.
type StatusCoder interface {
	StatusCode() int
}

// Shield classifies failed price-provider calls. Throttling and
// unavailability (429, 503) arm the RateLimiter and collapse into
// ErrServiceUnavailable; every other failure is returned untouched.
type Shield struct {
	limiter *RateLimiter
	log     zerolog.Logger
}

// NewShield binds a Shield to the limiter it arms.
func NewShield(limiter *RateLimiter) *Shield {
	return &Shield{
		limiter: limiter,
		log:     log.With().Str("component", "price_shield").Logger(),
	}
}

// Handle always returns a non-nil error for a non-nil input: either
// ErrServiceUnavailable (after activating the block) or err itself.
// A nil err is returned as nil.
func (s *Shield) Handle(err error) error {
	if err == nil {
		return nil
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		switch code := sc.StatusCode(); code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			s.limiter.Activate()
			shieldOutcomes.WithLabelValues("blocked").Inc()
			until, _ := s.limiter.UnblockAt()
			s.log.Warn().
				Int("status", code).
				Time("unblock_at", until).
				Msg("price provider throttled, blocking outbound calls")
			return ErrServiceUnavailable
		}
	}

	shieldOutcomes.WithLabelValues("rethrown").Inc()
	return err
}
