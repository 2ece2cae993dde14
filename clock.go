package composure

import (
	"time"

	"github.com/rs/zerolog"
)

// Clock abstracts time so that timing logs and time-based features can be
// tested deterministically. [RealClock] is the production implementation.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// NewTimer creates a [Timer] firing after d.
	NewTimer(d time.Duration) Timer
}

// Timer abstracts [time.Timer] so fake clocks can hand out controllable
// timers.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// RealClock is a [Clock] backed by the time package. The zero value is
// ready to use and safe for concurrent use.
type RealClock struct{}

// Now returns [time.Now].
func (RealClock) Now() time.Time { return time.Now() }

// Since returns [time.Since].
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// NewTimer wraps [time.NewTimer].
func (RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{inner: time.NewTimer(d)}
}

type realTimer struct {
	inner *time.Timer
}

func (t *realTimer) C() <-chan time.Time        { return t.inner.C }
func (t *realTimer) Stop() bool                 { return t.inner.Stop() }
func (t *realTimer) Reset(d time.Duration) bool { return t.inner.Reset(d) }

// Stopwatch is the scoped timing hook wrapped around transport calls.
type Stopwatch struct {
	clock  Clock
	hooks  *Hooks
	logger zerolog.Logger
}

// NewStopwatch returns a stopwatch logging to logger. hooks may be nil.
func NewStopwatch(clock Clock, logger zerolog.Logger, hooks *Hooks) Stopwatch {
	if clock == nil {
		clock = RealClock{}
	}

	if hooks == nil {
		hooks = &Hooks{}
	}

	return Stopwatch{clock: clock, hooks: hooks, logger: logger}
}

// Start begins timing label and returns the release function. Release logs
// "<label> took N.NN ms" at debug level and emits OnRequestTimed; it is meant
// to be deferred so it fires on every exit path. Context fields already on
// the logger are kept; the client adds method and url.
func (s Stopwatch) Start(label string) (release func()) {
	start := s.clock.Now()

	return func() {
		elapsed := s.clock.Since(start)
		ms := float64(elapsed) / float64(time.Millisecond)

		s.logger.Debug().
			Str("label", label).
			Float64("elapsed_ms", ms).
			Msgf("%s took %0.2f ms", label, ms)

		s.hooks.emitRequestTimed(label, elapsed)
	}
}
