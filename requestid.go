package composure

import (
	"context"

	"github.com/google/uuid"
)

// DefaultRequestIDHeader is the header [RequestID] uses when none is given.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestID returns a feature stamping each request with a fresh UUID in
// header, keeping an ID already set by an outer layer or by the caller.
func RequestID(header string) Feature {
	if header == "" {
		header = DefaultRequestIDHeader
	}

	return Named("request_id", FeatureFunc(func(_ *Client, next Step) Step {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Headers == nil {
				req.Headers = make(map[string]string, 1)
			}

			if req.Headers[header] == "" {
				req.Headers[header] = uuid.NewString()
			}

			return next(ctx, req)
		}
	}))
}
