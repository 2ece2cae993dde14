package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"

	"github.com/byte4ever/composure"
)

// DefaultMaxInFlight is the in-flight ceiling used when none is given.
const DefaultMaxInFlight = 1000

type (
	// Transport sends composure requests with net/http.
	//
	// Pattern: Adapter — bridges composure's request descriptor and
	// net/http, translating failures into composure.TransportError.
	Transport struct {
		secure   *http.Client
		insecure *http.Client
		slots    chan struct{}
	}

	// Option configures a [Transport].
	Option func(*transportConfig)

	transportConfig struct {
		client      *http.Client
		maxInFlight int
	}
)

// WithHTTPClient sends through hc instead of a client built on a clone of
// http.DefaultTransport. Requests asking to skip certificate checks then
// use a copy of hc whose transport, when it is an *http.Transport, has
// verification disabled.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *transportConfig) {
		cfg.client = hc
	}
}

// WithMaxInFlight bounds simultaneous exchanges. Sends beyond the ceiling
// wait for a free slot or for their context to end.
func WithMaxInFlight(n int) Option {
	return func(cfg *transportConfig) {
		cfg.maxInFlight = n
	}
}

// NewTransport creates a transport.
func NewTransport(opts ...Option) *Transport {
	cfg := transportConfig{maxInFlight: DefaultMaxInFlight}
	for _, opt := range opts {
		opt(&cfg)
	}

	secure := cfg.client
	if secure == nil {
		secure = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}

	return &Transport{
		secure:   secure,
		insecure: insecureCopy(secure),
		slots:    make(chan struct{}, max(cfg.maxInFlight, 1)),
	}
}

func insecureCopy(hc *http.Client) *http.Client {
	base, ok := hc.Transport.(*http.Transport)
	if !ok {
		if hc.Transport != nil {
			return hc
		}

		base = http.DefaultTransport.(*http.Transport)
	}

	rt := base.Clone()
	if rt.TLSClientConfig == nil {
		rt.TLSClientConfig = &tls.Config{} //nolint:gosec // verification is turned off just below
	}

	rt.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec // requested per call by the request descriptor

	clone := *hc
	clone.Transport = rt

	return &clone
}

// Send performs one exchange. The request's Timeout bounds it; a nil body
// sends no body at all.
func (t *Transport) Send(
	ctx context.Context,
	req *composure.Request,
) (*composure.RawResponse, error) {
	select {
	case t.slots <- struct{}{}:
		defer func() { <-t.slots }()
	case <-ctx.Done():
		return nil, transportError(req, ctx.Err())
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return nil, transportError(req, err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	hc := t.secure
	if req.InsecureSkipVerify {
		hc = t.insecure
	}

	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, transportError(req, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(req, fmt.Errorf("read response body: %w", err))
	}

	raw := &composure.RawResponse{StatusCode: resp.StatusCode}
	if !bodyless(resp.StatusCode) || len(data) > 0 {
		raw.Body = data
	}

	return raw, nil
}

// bodyless reports statuses that never carry a body.
func bodyless(code int) bool {
	return code == http.StatusNoContent || code == http.StatusNotModified ||
		(code >= 100 && code < 200)
}

// InFlight returns the number of exchanges currently holding a slot.
func (t *Transport) InFlight() int {
	return len(t.slots)
}

func transportError(req *composure.Request, err error) error {
	return &composure.TransportError{Method: req.Method, URL: req.URL, Err: err}
}
