package composure

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timeout returns a feature bounding the inner chain with a deadline of d.
// The inner chain runs on the caller's goroutine under a derived context,
// so layers still unwind in order; when the deadline is what made it fail
// the error matches both [ErrTimeout] and the original cause. Cancellation
// of the parent context is reported unchanged.
func Timeout(d time.Duration) Feature {
	return Named("timeout", Parameterized(timeoutStep, d))
}

func timeoutStep(c *Client, next Step, d time.Duration) Step {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // preserving context error identity
		}

		tctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		resp, err := next(tctx, req)
		if err == nil || ctx.Err() != nil {
			return resp, err
		}

		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			c.hooks.emitTimeout()
			return resp, fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		return resp, err
	}
}
