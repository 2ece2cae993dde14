package mock

import (
	"context"
	"sync"

	"github.com/byte4ever/composure"
)

// Transport is a scriptable composure.Transport. It answers with the
// result of Handler (or 200 with an empty JSON object when Handler is nil)
// and keeps a copy of every request it received.
type Transport struct {
	Handler  func(ctx context.Context, req *composure.Request) (*composure.RawResponse, error)
	requests []*composure.Request
	mu       sync.Mutex
}

// Respond returns a transport answering every request with code and body.
func Respond(code int, body string) *Transport {
	return &Transport{
		Handler: func(context.Context, *composure.Request) (*composure.RawResponse, error) {
			return &composure.RawResponse{StatusCode: code, Body: []byte(body)}, nil
		},
	}
}

// Fail returns a transport failing every request with err wrapped in a
// composure.TransportError.
func Fail(err error) *Transport {
	return &Transport{
		Handler: func(_ context.Context, req *composure.Request) (*composure.RawResponse, error) {
			return nil, &composure.TransportError{Method: req.Method, URL: req.URL, Err: err}
		},
	}
}

// Send records req and answers it.
func (t *Transport) Send(ctx context.Context, req *composure.Request) (*composure.RawResponse, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req.Clone())
	handler := t.Handler
	t.mu.Unlock()

	if handler == nil {
		return &composure.RawResponse{StatusCode: 200, Body: []byte("{}")}, nil
	}

	return handler(ctx, req)
}

// Calls returns how many requests were sent.
func (t *Transport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.requests)
}

// Requests returns copies of the requests sent so far, oldest first.
func (t *Transport) Requests() []*composure.Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*composure.Request, len(t.requests))
	for i, r := range t.requests {
		out[i] = r.Clone()
	}

	return out
}
