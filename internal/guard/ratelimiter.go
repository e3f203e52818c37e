package guard

import (
	"sync"
	"time"
)

// DefaultBlockDuration is how long outbound calls stay blocked after an
// upstream throttle signal.
const DefaultBlockDuration = 60 * time.Second

// Mode selects how Activate behaves while a block is already active.
type Mode int

const (
	// ModeReschedule cancels the pending clear and schedules a new one, so the
	// block lifts exactly once, BlockDuration after the last activation.
	ModeReschedule Mode = iota

	// ModeStacked schedules an independent clear on every activation. The
	// earliest clear still fires at its original time and lifts the block even
	// when a later activation pushed unblockAt further out.
	ModeStacked
)

// String returns the configuration spelling of m.
func (m Mode) String() string {
	if m == ModeStacked {
		return "stacked"
	}
	return "reschedule"
}

// ParseMode maps "stacked" to ModeStacked and anything else to ModeReschedule.
func ParseMode(s string) Mode {
	if s == "stacked" {
		return ModeStacked
	}
	return ModeReschedule
}

// ----------------------------------------------------------------------------
// Options

type Option func(*options)

type options struct {
	clock    Clock
	duration time.Duration
	mode     Mode
}

func defaultOptions() options {
	return options{
		clock:    SystemClock{},
		duration: DefaultBlockDuration,
		mode:     ModeReschedule,
	}
}

// WithClock injects the time source and scheduler.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithBlockDuration overrides DefaultBlockDuration. Non-positive values are ignored.
func WithBlockDuration(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.duration = d
		}
	}
}

// WithMode selects the repeated-activation behavior.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// ----------------------------------------------------------------------------
// RateLimiter

// RateLimiter tracks whether outbound price-provider calls are currently
// blocked. The zero value is not usable; construct with NewRateLimiter.
//
// It is safe for concurrent use.
type RateLimiter struct {
	clock    Clock
	duration time.Duration
	mode     Mode

	mu        sync.Mutex
	blocked   bool
	unblockAt time.Time
	timer     Timer
	gen       uint64 // bumped per reschedule; stale clears compare against it
}

// NewRateLimiter returns an unblocked limiter.
func NewRateLimiter(opts ...Option) *RateLimiter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	blockedGauge.Set(0)
	return &RateLimiter{clock: o.clock, duration: o.duration, mode: o.mode}
}

// BlockDuration reports the configured block window.
func (rl *RateLimiter) BlockDuration() time.Duration { return rl.duration }

// Mode reports the configured repeated-activation behavior.
func (rl *RateLimiter) Mode() Mode { return rl.mode }

// ShouldBlock reports whether the block is set and now is strictly before
// unblockAt.
func (rl *RateLimiter) ShouldBlock() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.blocked && rl.clock.Now().Before(rl.unblockAt)
}

// UnblockAt returns the expiry of the current block and whether one is set.
func (rl *RateLimiter) UnblockAt() (time.Time, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.unblockAt, rl.blocked
}

// ThrowIfBlocked returns ErrRateLimited while ShouldBlock is true.
func (rl *RateLimiter) ThrowIfBlocked() error {
	if rl.ShouldBlock() {
		return ErrRateLimited
	}
	return nil
}

// Activate arms the block for one window starting now and schedules the
// automatic clear according to the limiter's Mode.
func (rl *RateLimiter) Activate() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.blocked = true
	rl.unblockAt = rl.clock.Now().Add(rl.duration)
	blockedGauge.Set(1)
	blockActivations.Inc()

	switch rl.mode {
	case ModeStacked:
		rl.timer = rl.clock.AfterFunc(rl.duration, func() { rl.clear(0, false) })
	default:
		if rl.timer != nil {
			rl.timer.Stop()
		}
		rl.gen++
		gen := rl.gen
		rl.timer = rl.clock.AfterFunc(rl.duration, func() { rl.clear(gen, true) })
	}
}

// clear lifts the block. With checkGen set, a clear belonging to a replaced
// schedule is a no-op even if its timer fired before Stop took effect.
func (rl *RateLimiter) clear(gen uint64, checkGen bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if checkGen && gen != rl.gen {
		return
	}
	rl.blocked = false
	rl.unblockAt = time.Time{}
	rl.timer = nil
	blockedGauge.Set(0)
}

// Stop cancels the pending clear, if any. Used on shutdown.
func (rl *RateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.timer != nil {
		rl.timer.Stop()
		rl.timer = nil
	}
}
