package composure

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy determines the delay between retry attempts.
//
// Pattern: Strategy — swap backoff algorithms without changing the retry
// feature.
type BackoffStrategy interface {
	// Delay returns the wait before retry number attempt (0-indexed).
	Delay(attempt int) time.Duration
}

// BackoffFunc adapts a plain function into a [BackoffStrategy].
type BackoffFunc func(attempt int) time.Duration

// Delay calls f.
func (f BackoffFunc) Delay(attempt int) time.Duration { return f(attempt) }

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) BackoffStrategy {
	return BackoffFunc(func(int) time.Duration { return d })
}

// ExponentialBackoff waits base * 2^attempt.
func ExponentialBackoff(base time.Duration) BackoffStrategy {
	return BackoffFunc(func(attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	})
}

// LinearBackoff waits step * (attempt + 1).
func LinearBackoff(step time.Duration) BackoffStrategy {
	return BackoffFunc(func(attempt int) time.Duration {
		return step * time.Duration(attempt+1)
	})
}

// ExponentialJitterBackoff waits a uniformly random duration in
// [0, base * 2^attempt], spreading retries of concurrent callers.
func ExponentialJitterBackoff(base time.Duration) BackoffStrategy {
	return BackoffFunc(func(attempt int) time.Duration {
		ceiling := int64(float64(base) * math.Pow(2, float64(attempt)))
		if ceiling <= 0 {
			return 0
		}

		return time.Duration(rand.Int64N(ceiling + 1))
	})
}

// ParseBackoff maps a strategy name to a [BackoffStrategy]. Known names are
// "constant", "exponential", "linear" and "exponential_jitter".
//
//nolint:ireturn // returns interface by design for strategy pattern
func ParseBackoff(name string, base time.Duration) (BackoffStrategy, error) {
	switch name {
	case "constant":
		return ConstantBackoff(base), nil
	case "exponential":
		return ExponentialBackoff(base), nil
	case "linear":
		return LinearBackoff(base), nil
	case "exponential_jitter":
		return ExponentialJitterBackoff(base), nil
	default:
		return nil, fmt.Errorf("unknown backoff strategy: %q", name)
	}
}
