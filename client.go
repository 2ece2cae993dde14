package composure

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type (
	// Transport performs one HTTP exchange. Implementations report network
	// failures as [*TransportError] and enforce their own in-flight ceiling.
	Transport interface {
		Send(ctx context.Context, req *Request) (*RawResponse, error)
	}

	// TransportFunc adapts a function into a [Transport].
	TransportFunc func(ctx context.Context, req *Request) (*RawResponse, error)

	// MockOracle answers requests from recorded responses. Lookup is keyed
	// only by method and URL; headers and body are not considered.
	MockOracle interface {
		Lookup(method Method, url string) (*Response, bool)
	}

	// Callback is the continuation receiving the outcome of a call. A
	// [Client] invokes it exactly once per call.
	Callback func(resp *Response, err error)

	// Option configures a [Client].
	Option func(*Client)

	// Client issues HTTP calls through an ordered list of features.
	//
	// Pattern: Facade — verb-shaped entry points hide request building,
	// chain composition and continuation delivery.
	Client struct {
		transport Transport
		mocks     MockOracle
		clock     Clock
		registry  *Registry
		headers   map[string]string
		name      string
		features  []Feature
		deps      []HealthReporter
		breakers  []*CircuitBreaker
		limiters  []*RateLimiter
		bulkheads []*Bulkhead
		states    map[any]any
		hooks     Hooks
		logger    zerolog.Logger
		timeout   time.Duration
		mu        sync.RWMutex
		stateMu   sync.Mutex
	}
)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	return f(ctx, req)
}

// WithFeatures appends features in registration order. The first feature is
// the outermost layer of every chain.
func WithFeatures(features ...Feature) Option {
	return func(c *Client) {
		c.features = append(c.features, features...)
	}
}

// WithMockOracle enables partial mocking: requests the oracle knows are
// answered without reaching the transport; the rest fall through.
func WithMockOracle(m MockOracle) Option {
	return func(c *Client) {
		c.mocks = m
	}
}

// WithLogger sets the logger used for timing and diagnostics. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) Option {
	return func(c *Client) {
		c.hooks = h
	}
}

// WithClock sets the clock used for timing and by time-based features.
func WithClock(clk Clock) Option {
	return func(c *Client) {
		c.clock = clk
	}
}

// WithHeaders seeds the shared header mapping.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		maps.Copy(c.headers, h)
	}
}

// WithRequestTimeout overrides [DefaultRequestTimeout].
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRegistry sets the registry a named client registers with. Named
// clients otherwise register with [DefaultRegistry].
func WithRegistry(reg *Registry) Option {
	return func(c *Client) {
		c.registry = reg
	}
}

// DependsOn declares health dependencies. If any of them is critical and
// unhealthy, this client reports itself degraded.
func DependsOn(reporters ...HealthReporter) Option {
	return func(c *Client) {
		c.deps = append(c.deps, reporters...)
	}
}

// New creates a client sending through transport. The name identifies the
// client in health reports; a named client registers itself with its
// registry. transport may be nil when every request is expected to be
// answered by a mock oracle or short-circuited by a feature.
func New(name string, transport Transport, opts ...Option) *Client {
	c := &Client{
		name:      name,
		transport: transport,
		clock:     RealClock{},
		headers:   map[string]string{},
		logger:    zerolog.Nop(),
		timeout:   DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, f := range c.features {
		if b, ok := f.(clientBinder); ok {
			b.bind(c)
		}
	}

	if name != "" {
		if c.registry == nil {
			c.registry = DefaultRegistry()
		}

		c.registry.Register(c)
	}

	return c
}

// Name returns the client's name.
func (c *Client) Name() string { return c.name }

// Logger returns the client's logger.
func (c *Client) Logger() zerolog.Logger { return c.logger }

// Hooks returns the client's hooks.
func (c *Client) Hooks() *Hooks { return &c.hooks }

// Clock returns the client's clock.
func (c *Client) Clock() Clock { return c.clock }

// Features returns the registered features in registration order.
func (c *Client) Features() []Feature {
	out := make([]Feature, len(c.features))
	copy(out, c.features)

	return out
}

// Headers returns a snapshot of the shared header mapping.
func (c *Client) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.headers)
}

// SetHeader sets a shared header. It affects calls built afterwards; the
// last writer wins.
func (c *Client) SetHeader(name, value string) {
	c.mu.Lock()
	c.headers[name] = value
	c.mu.Unlock()
}

// DeleteHeader removes a shared header.
func (c *Client) DeleteHeader(name string) {
	c.mu.Lock()
	delete(c.headers, name)
	c.mu.Unlock()
}

// Get issues a GET to endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, cb Callback) {
	c.Call(ctx, MethodGet, endpoint, nil, cb)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, endpoint string, body any, cb Callback) {
	c.Call(ctx, MethodPut, endpoint, body, cb)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, endpoint string, body any, cb Callback) {
	c.Call(ctx, MethodPost, endpoint, body, cb)
}

// Delete issues a DELETE to endpoint.
func (c *Client) Delete(ctx context.Context, endpoint string, cb Callback) {
	c.Call(ctx, MethodDelete, endpoint, nil, cb)
}

// Call runs one request through a freshly composed chain on its own
// goroutine and delivers the outcome to cb exactly once. A nil cb discards
// the outcome. A panic inside the chain is delivered as [ErrStepPanicked];
// a panic inside cb is the caller's and crashes the goroutine as usual.
func (c *Client) Call(
	ctx context.Context,
	method Method,
	endpoint string,
	body any,
	cb Callback,
) {
	deliver := singleFire(cb)

	go c.dispatch(ctx, method, endpoint, body, deliver)
}

func (c *Client) dispatch(
	ctx context.Context,
	method Method,
	endpoint string,
	body any,
	deliver Callback,
) {
	deliver(c.run(ctx, method, endpoint, body))
}

// run executes the chain, turning a panic inside it into [ErrStepPanicked].
// A panic raised by the caller's callback is not recovered here.
func (c *Client) run(
	ctx context.Context,
	method Method,
	endpoint string,
	body any,
) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("method", string(method)).
				Str("url", endpoint).
				Interface("panic", r).
				Msg("step panicked")

			resp, err = nil, fmt.Errorf("%w: %v", ErrStepPanicked, r)
		}
	}()

	return c.execute(ctx, method, endpoint, body)
}

func (c *Client) execute(
	ctx context.Context,
	method Method,
	endpoint string,
	body any,
) (*Response, error) {
	req, err := BuildRequest(method, endpoint, body, c.Headers(), c.timeout)
	if err != nil {
		return nil, err
	}

	chain, err := Compose(c, c.features, c.terminal())
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", string(method)).
			Str("url", endpoint).
			Msg("compose chain")

		return nil, err
	}

	resp, err := chain(ctx, req)
	if resp == nil && err == nil {
		return nil, ErrNoResponse
	}

	return resp, err
}

// singleFire guards cb so that only its first invocation goes through.
func singleFire(cb Callback) Callback {
	var once sync.Once

	return func(resp *Response, err error) {
		once.Do(func() {
			if cb != nil {
				cb(resp, err)
			}
		})
	}
}
