package composure

import (
	"context"
	"sync/atomic"
	"time"
)

type (
	circuitBreakerConfig struct {
		failureThreshold    int
		recoveryTimeout     time.Duration
		halfOpenMaxAttempts int
	}

	// CircuitBreakerOption configures a circuit breaker.
	CircuitBreakerOption func(*circuitBreakerConfig)

	// CircuitBreaker tracks the health of the remote end and fails fast
	// while it is down.
	//
	// Pattern: Circuit Breaker — fast-fails calls to an unhealthy remote;
	// recovers through half-open probes once the recovery timeout elapsed.
	// Lock-free via atomic CAS.
	CircuitBreaker struct {
		clock Clock
		hooks *Hooks
		cfg   circuitBreakerConfig

		state             atomic.Uint32
		failureCount      atomic.Int64
		lastFailureNano   atomic.Int64
		halfOpenSuccesses atomic.Int64
	}

	breakerFeature struct {
		opts []CircuitBreakerOption
	}
)

const (
	stateClosed   uint32 = 0
	stateOpen     uint32 = 1
	stateHalfOpen uint32 = 2
)

// FailureThreshold sets the number of consecutive failures that opens the
// breaker. Default 5.
func FailureThreshold(n int) CircuitBreakerOption {
	return func(cfg *circuitBreakerConfig) {
		cfg.failureThreshold = n
	}
}

// RecoveryTimeout sets how long the breaker stays open before letting a
// probe through. Default 30s.
func RecoveryTimeout(d time.Duration) CircuitBreakerOption {
	return func(cfg *circuitBreakerConfig) {
		cfg.recoveryTimeout = d
	}
}

// HalfOpenMaxAttempts sets how many successful probes close a half-open
// breaker. Default 1.
func HalfOpenMaxAttempts(n int) CircuitBreakerOption {
	return func(cfg *circuitBreakerConfig) {
		cfg.halfOpenMaxAttempts = n
	}
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(
	clock Clock,
	hooks *Hooks,
	opts ...CircuitBreakerOption,
) *CircuitBreaker {
	cfg := circuitBreakerConfig{
		failureThreshold:    5,
		recoveryTimeout:     30 * time.Second,
		halfOpenMaxAttempts: 1,
	}
	for _, o := range opts {
		o(&cfg)
	}

	return &CircuitBreaker{clock: clock, hooks: hooks, cfg: cfg}
}

// Allow returns nil when a call may proceed and [ErrCircuitOpen] while the
// breaker is open and the recovery timeout has not elapsed.
func (cb *CircuitBreaker) Allow() error {
	if cb.state.Load() != stateOpen {
		return nil
	}

	last := time.Unix(0, cb.lastFailureNano.Load())
	if cb.clock.Since(last) <= cb.cfg.recoveryTimeout {
		return ErrCircuitOpen
	}

	// Losing the CAS means another call already moved us to half-open.
	if cb.state.CompareAndSwap(stateOpen, stateHalfOpen) {
		cb.halfOpenSuccesses.Store(0)
		cb.hooks.emitCircuitHalfOpen()
	}

	return nil
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	switch cb.state.Load() {
	case stateClosed:
		cb.failureCount.Store(0)

	case stateHalfOpen:
		if cb.halfOpenSuccesses.Add(1) < int64(cb.cfg.halfOpenMaxAttempts) {
			return
		}

		if cb.state.CompareAndSwap(stateHalfOpen, stateClosed) {
			cb.failureCount.Store(0)
			cb.halfOpenSuccesses.Store(0)
			cb.hooks.emitCircuitClose()
		}
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.lastFailureNano.Store(cb.clock.Now().UnixNano())

	switch cb.state.Load() {
	case stateClosed:
		if cb.failureCount.Add(1) < int64(cb.cfg.failureThreshold) {
			return
		}

		if cb.state.CompareAndSwap(stateClosed, stateOpen) {
			cb.hooks.emitCircuitOpen()
		}

	case stateHalfOpen:
		if cb.state.CompareAndSwap(stateHalfOpen, stateOpen) {
			cb.halfOpenSuccesses.Store(0)
			cb.hooks.emitCircuitOpen()
		}
	}
}

// State returns "closed", "open" or "half_open".
func (cb *CircuitBreaker) State() string {
	switch cb.state.Load() {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Breaker returns a feature guarding the inner chain with a circuit
// breaker. Any error coming back from next counts as a failure. Every
// client built with the feature gets its own breaker.
func Breaker(opts ...CircuitBreakerOption) Feature {
	return Named("circuit_breaker", &breakerFeature{opts: opts})
}

func (f *breakerFeature) bind(c *Client) {
	f.breaker(c)
}

func (f *breakerFeature) breaker(c *Client) *CircuitBreaker {
	return featureState(c, f, func() *CircuitBreaker {
		cb := NewCircuitBreaker(c.clock, &c.hooks, f.opts...)
		c.breakers = append(c.breakers, cb)

		return cb
	})
}

func (f *breakerFeature) Wrap(c *Client, next Step) (Step, error) {
	cb := f.breaker(c)

	return func(ctx context.Context, req *Request) (*Response, error) {
		if err := cb.Allow(); err != nil {
			return nil, err
		}

		resp, err := next(ctx, req)
		if err != nil {
			cb.RecordFailure()
		} else {
			cb.RecordSuccess()
		}

		return resp, err
	}, nil
}
