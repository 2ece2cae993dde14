package composure

import (
	"context"

	"github.com/rs/zerolog"
)

// Logging returns a feature logging every call's outcome through the
// client's logger: info with the status code on success, error otherwise.
// Placed first it sees the call as the caller does; placed last it sees
// each attempt a retry makes.
func Logging() Feature {
	return Named("logging", FeatureFunc(func(c *Client, next Step) Step {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := c.clock.Now()
			resp, err := next(ctx, req)

			var ev *zerolog.Event
			if err != nil {
				ev = c.logger.Error().Err(err)
			} else {
				ev = c.logger.Info()
			}

			ev = ev.Str("method", string(req.Method)).
				Str("url", req.URL).
				Dur("elapsed", c.clock.Since(start))

			if resp != nil {
				ev = ev.Int("status", resp.StatusCode())
			}

			if id, ok := req.Headers[DefaultRequestIDHeader]; ok {
				ev = ev.Str("request_id", id)
			}

			ev.Msg("call completed")

			return resp, err
		}
	}))
}
