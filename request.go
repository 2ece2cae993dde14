package composure

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
)

// Method is one of the HTTP verbs a [Client] can issue.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPut    Method = http.MethodPut
	MethodPost   Method = http.MethodPost
	MethodDelete Method = http.MethodDelete
)

// DefaultRequestTimeout is the connection timeout attached to every request
// unless the client is configured otherwise.
const DefaultRequestTimeout = 60 * time.Second

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPut, MethodPost, MethodDelete:
		return true
	default:
		return false
	}
}

// Request describes one outbound call. It is built once per call by
// [BuildRequest]; features may mutate Headers and Body on the way in.
type Request struct {
	// Headers is a snapshot of the client headers taken at build time.
	Headers map[string]string
	// Method is the HTTP verb.
	Method Method
	// URL is the absolute target.
	URL string
	// Body is the serialized JSON payload. Nil means the request carries
	// no body at all, which is distinct from a non-nil empty slice.
	Body []byte
	// Timeout bounds the transport exchange.
	Timeout time.Duration
	// InsecureSkipVerify disables certificate validation. BuildRequest
	// always sets it.
	InsecureSkipVerify bool
}

// HasBody reports whether the request carries a body.
func (r *Request) HasBody() bool { return r.Body != nil }

// Key returns "METHOD URL", the identity used for mocks, caches and timing
// labels.
func (r *Request) Key() string { return RequestKey(r.Method, r.URL) }

// Clone returns a deep copy of the request, preserving the distinction
// between a nil and an empty body.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = maps.Clone(r.Headers)

	if r.Body != nil {
		c.Body = make([]byte, len(r.Body))
		copy(c.Body, r.Body)
	}

	return &c
}

// RequestKey joins a method and a URL the way [Request.Key] does.
func RequestKey(method Method, rawURL string) string {
	return string(method) + " " + rawURL
}

// BuildRequest turns a method, an endpoint and an optional body into a
// request descriptor. Headers are copied, never referenced. A nil body, an
// empty string or an empty byte slice leaves the body unset. []byte and
// json.RawMessage are copied through verbatim; anything else is encoded as
// compact JSON, so a map {"a": 1} goes out as {"a":1}. A non-positive timeout
// selects [DefaultRequestTimeout].
func BuildRequest(
	method Method,
	endpoint string,
	body any,
	headers map[string]string,
	timeout time.Duration,
) (*Request, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	encoded, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("composure: encode body: %w", err)
	}

	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	hdrs := make(map[string]string, len(headers))
	maps.Copy(hdrs, headers)

	return &Request{
		Method:             method,
		URL:                endpoint,
		Headers:            hdrs,
		Body:               encoded,
		Timeout:            timeout,
		InsecureSkipVerify: true,
	}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
	case []byte:
		return copyBody(v), nil
	case json.RawMessage:
		return copyBody(v), nil
	}

	return json.Marshal(body)
}

func copyBody(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out
}
