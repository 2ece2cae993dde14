package composure

import (
	"context"
	"fmt"
	"time"
)

// RetryParams configures [Retry]. Field tags are the argument names
// accepted when the retry step is bound through [WithArgs].
type RetryParams struct {
	// Backoff computes the wait between attempts. Nil retries immediately.
	Backoff BackoffStrategy `mapstructure:"backoff"`
	// RetryIf vetoes retries for errors it returns false for. Errors marked
	// [Permanent] are never retried.
	RetryIf func(error) bool `mapstructure:"retry_if"`
	// MaxAttempts counts the first attempt. Values below 1 mean 1.
	MaxAttempts int `mapstructure:"max_attempts"`
	// MaxDelay caps the backoff delay. Zero means no cap.
	MaxDelay time.Duration `mapstructure:"max_delay"`
	// PerAttemptTimeout bounds each attempt. Zero means no bound.
	PerAttemptTimeout time.Duration `mapstructure:"per_attempt_timeout"`
}

// Pattern: Retry with Backoff — masks transient failures of the inner chain;
// stops early on permanent errors.

// Retry returns a feature re-running the inner chain until it succeeds or
// params.MaxAttempts is reached. Each attempt gets its own copy of the
// request so inner features start from the same descriptor every time.
// When attempts run out the error matches [ErrRetriesExhausted] and the
// last failure; the last response, if any, is returned alongside.
func Retry(params RetryParams) Feature {
	return Named("retry", Parameterized(RetryStep, params))
}

// RetryStep is the composition function behind [Retry]. Bind it with
// [WithArgs] to configure retries from named arguments, for instance
// WithArgs(RetryStep, Arg("max_attempts", 3)).
func RetryStep(c *Client, next Step, params RetryParams) Step {
	maxAttempts := max(params.MaxAttempts, 1)

	return func(ctx context.Context, req *Request) (*Response, error) {
		var (
			lastResp *Response
			lastErr  error
		)

		for attempt := range maxAttempts {
			resp, err := runAttempt(ctx, next, req.Clone(), params.PerAttemptTimeout)
			if err == nil {
				return resp, nil
			}

			lastResp, lastErr = resp, err

			if IsPermanent(err) {
				return resp, err
			}

			if params.RetryIf != nil && !params.RetryIf(err) {
				return resp, err
			}

			if attempt == maxAttempts-1 {
				break
			}

			c.hooks.emitRetry(attempt+1, err)

			if werr := wait(ctx, c.clock, retryDelay(params, attempt)); werr != nil {
				return nil, werr
			}
		}

		return lastResp, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
	}
}

func runAttempt(
	ctx context.Context,
	next Step,
	req *Request,
	timeout time.Duration,
) (*Response, error) {
	if timeout <= 0 {
		return next(ctx, req)
	}

	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return next(actx, req)
}

func retryDelay(params RetryParams, attempt int) time.Duration {
	if params.Backoff == nil {
		return 0
	}

	d := params.Backoff.Delay(attempt)
	if params.MaxDelay > 0 && d > params.MaxDelay {
		d = params.MaxDelay
	}

	return d
}

// wait sleeps d on clock, returning early with the context error.
func wait(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err() //nolint:wrapcheck // preserving context error identity
	}

	timer := clock.NewTimer(d)

	select {
	case <-timer.C():
		return nil
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err() //nolint:wrapcheck // preserving context error identity
	}
}
