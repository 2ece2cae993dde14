package composure

import "time"

// Pattern: Factory Function — each preset produces a ready-made feature list
// for a common use case.

// StandardFeatures returns features for a typical API client, outer to
// inner: a 5s call deadline, a circuit breaker opening after 5 failures for
// 30s, and 3 attempts with 100ms exponential backoff.
func StandardFeatures() []Feature {
	return []Feature{
		Timeout(5 * time.Second),
		Breaker(FailureThreshold(5), RecoveryTimeout(30*time.Second)),
		Retry(RetryParams{
			MaxAttempts: 3,
			Backoff:     ExponentialBackoff(100 * time.Millisecond),
		}),
	}
}

// AggressiveFeatures returns features for latency-sensitive clients: a 2s
// deadline, a breaker opening after 3 failures for 15s, at most 20
// concurrent calls, and 5 attempts with 50ms exponential backoff capped at
// 5s.
func AggressiveFeatures() []Feature {
	return []Feature{
		Timeout(2 * time.Second),
		Breaker(FailureThreshold(3), RecoveryTimeout(15*time.Second)),
		MaxConcurrent(20),
		Retry(RetryParams{
			MaxAttempts: 5,
			Backoff:     ExponentialBackoff(50 * time.Millisecond),
			MaxDelay:    5 * time.Second,
		}),
	}
}
