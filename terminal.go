package composure

import "context"

// terminal returns the innermost step: a mock lookup when an oracle is
// configured, otherwise (or on a miss) a timed transport exchange.
func (c *Client) terminal() Step {
	return func(ctx context.Context, req *Request) (*Response, error) {
		if c.mocks != nil {
			if resp, ok := c.mocks.Lookup(req.Method, req.URL); ok {
				c.hooks.emitMockHit(req.Method, req.URL)
				return resp.Clone(), nil
			}

			// Partial mocking: a miss is not an error.
			c.logger.Warn().
				Str("method", string(req.Method)).
				Str("url", req.URL).
				Msg("mock not found")
			c.hooks.emitMockMiss(req.Method, req.URL)
		}

		raw, err := c.send(ctx, req)
		if err != nil {
			return nil, err
		}

		if raw == nil {
			return nil, ErrNoResponse
		}

		return normalize(raw), nil
	}
}

func (c *Client) send(ctx context.Context, req *Request) (*RawResponse, error) {
	if c.transport == nil {
		return nil, ErrNoTransport
	}

	logger := c.logger.With().
		Str("method", string(req.Method)).
		Str("url", req.URL).
		Logger()

	release := NewStopwatch(c.clock, logger, &c.hooks).Start(req.Key())
	defer release()

	return c.transport.Send(ctx, req) //nolint:wrapcheck // transport errors propagate untouched
}
