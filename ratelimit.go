package composure

import (
	"context"
	"sync/atomic"
	"time"
)

type (
	rateLimitConfig struct {
		blocking bool
	}

	// RateLimitOption configures rate limiter behavior.
	RateLimitOption func(*rateLimitConfig)

	// RateLimiter controls call throughput with a token bucket.
	//
	// Pattern: Rate Limiter — token bucket; lock-free via atomic CAS for
	// token acquisition and refill.
	RateLimiter struct {
		clock    Clock
		hooks    *Hooks
		rate     float64
		capacity int64
		cfg      rateLimitConfig

		tokens   atomic.Int64
		lastNano atomic.Int64
	}

	rateLimitFeature struct {
		opts []RateLimitOption
		rate float64
	}
)

// tokenScale stores tokens in fixed point: one token is 1e9 units, so
// elapsed nanoseconds times the per-second rate is already scaled.
const tokenScale int64 = 1_000_000_000

// RateLimitBlocking makes the limiter wait for a token instead of
// rejecting the call.
func RateLimitBlocking() RateLimitOption {
	return func(cfg *rateLimitConfig) {
		cfg.blocking = true
	}
}

// NewRateLimiter creates a limiter allowing rate calls per second, starting
// with a full bucket.
func NewRateLimiter(
	rate float64,
	clock Clock,
	hooks *Hooks,
	opts ...RateLimitOption,
) *RateLimiter {
	var cfg rateLimitConfig
	for _, o := range opts {
		o(&cfg)
	}

	rl := &RateLimiter{
		rate:     rate,
		capacity: int64(rate * float64(tokenScale)),
		clock:    clock,
		hooks:    hooks,
		cfg:      cfg,
	}

	rl.tokens.Store(rl.capacity)
	rl.lastNano.Store(clock.Now().UnixNano())

	return rl
}

func (rl *RateLimiter) refill() {
	for {
		last := rl.lastNano.Load()
		now := rl.clock.Now().UnixNano()

		elapsed := now - last
		if elapsed <= 0 {
			return
		}

		if !rl.lastNano.CompareAndSwap(last, now) {
			continue
		}

		add := int64(float64(elapsed) * rl.rate)
		if add <= 0 {
			return
		}

		for {
			old := rl.tokens.Load()
			if rl.tokens.CompareAndSwap(old, min(old+add, rl.capacity)) {
				return
			}
		}
	}
}

func (rl *RateLimiter) tryAcquire() bool {
	for {
		cur := rl.tokens.Load()
		if cur < tokenScale {
			return false
		}

		if rl.tokens.CompareAndSwap(cur, cur-tokenScale) {
			return true
		}
	}
}

// Allow takes a token. Without one it returns [ErrRateLimited], or in
// blocking mode polls until a token frees up or ctx is done.
func (rl *RateLimiter) Allow(ctx context.Context) error {
	rl.refill()

	if rl.tryAcquire() {
		return nil
	}

	if !rl.cfg.blocking {
		rl.hooks.emitRateLimited()
		return ErrRateLimited
	}

	for {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // preserving context error identity
		}

		timer := rl.clock.NewTimer(time.Millisecond)

		select {
		case <-timer.C():
			rl.refill()

			if rl.tryAcquire() {
				return nil
			}
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err() //nolint:wrapcheck // preserving context error identity
		}
	}
}

// Saturated reports whether the bucket is empty.
func (rl *RateLimiter) Saturated() bool {
	rl.refill()
	return rl.tokens.Load() < tokenScale
}

// RateLimit returns a feature admitting at most rate calls per second into
// the inner chain. Every client built with the feature gets its own bucket.
func RateLimit(rate float64, opts ...RateLimitOption) Feature {
	return Named("rate_limiter", &rateLimitFeature{rate: rate, opts: opts})
}

func (f *rateLimitFeature) bind(c *Client) {
	f.limiter(c)
}

func (f *rateLimitFeature) limiter(c *Client) *RateLimiter {
	return featureState(c, f, func() *RateLimiter {
		rl := NewRateLimiter(f.rate, c.clock, &c.hooks, f.opts...)
		c.limiters = append(c.limiters, rl)

		return rl
	})
}

func (f *rateLimitFeature) Wrap(c *Client, next Step) (Step, error) {
	rl := f.limiter(c)

	return func(ctx context.Context, req *Request) (*Response, error) {
		if err := rl.Allow(ctx); err != nil {
			return nil, err
		}

		return next(ctx, req)
	}, nil
}
