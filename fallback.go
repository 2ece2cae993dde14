package composure

import "context"

// Pattern: Fallback — turns a final error into a response, the last line of
// defence around the inner chain.

// Fallback returns a feature calling fn with the request and the error
// whenever the inner chain fails. fn's outcome replaces the failure.
func Fallback(fn func(req *Request, err error) (*Response, error)) Feature {
	return Named("fallback", FeatureFunc(func(c *Client, next Step) Step {
		return func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next(ctx, req)
			if err == nil {
				return resp, nil
			}

			c.hooks.emitFallbackUsed(err)

			return fn(req, err)
		}
	}))
}

// FallbackResponse returns a feature answering with a copy of resp whenever
// the inner chain fails.
func FallbackResponse(resp *Response) Feature {
	return Fallback(func(*Request, error) (*Response, error) {
		return resp.Clone(), nil
	})
}
