package composure_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/byte4ever/composure"
)

// ---------------------------------------------------------------------------
// fakeClock: timers fire immediately and move the clock forward by their
// duration, so backoff and blocking waits complete without sleeping.
// ---------------------------------------------------------------------------

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	mu     sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *fakeClock) NewTimer(d time.Duration) composure.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)

	ch := make(chan time.Time, 1)
	ch <- c.now

	return &firedTimer{ch: ch}
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func (c *fakeClock) recordedSleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)

	return out
}

type firedTimer struct {
	ch chan time.Time
}

func (t *firedTimer) C() <-chan time.Time      { return t.ch }
func (t *firedTimer) Stop() bool               { return false }
func (t *firedTimer) Reset(time.Duration) bool { return false }

// ---------------------------------------------------------------------------
// Calling through the continuation API
// ---------------------------------------------------------------------------

type outcome struct {
	resp *composure.Response
	err  error
}

// await runs start and waits for its callback.
func await(t *testing.T, start func(cb composure.Callback)) (*composure.Response, error) {
	t.Helper()

	ch := make(chan outcome, 2)

	start(func(resp *composure.Response, err error) {
		ch <- outcome{resp: resp, err: err}
	})

	select {
	case o := <-ch:
		return o.resp, o.err
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked within 5s")
		return nil, nil
	}
}

func get(t *testing.T, c *composure.Client, url string) (*composure.Response, error) {
	t.Helper()

	return await(t, func(cb composure.Callback) {
		c.Get(context.Background(), url, cb)
	})
}

func post(t *testing.T, c *composure.Client, url string, body any) (*composure.Response, error) {
	t.Helper()

	return await(t, func(cb composure.Callback) {
		c.Post(context.Background(), url, body, cb)
	})
}

func bodyOf(t *testing.T, resp *composure.Response) string {
	t.Helper()

	if resp == nil {
		t.Fatal("response is nil")
	}

	body, ok := resp.Body()
	if !ok {
		t.Fatal("response has no body")
	}

	return body
}

// ---------------------------------------------------------------------------
// tracer records entry/exit order across features.
// ---------------------------------------------------------------------------

type tracer struct {
	events []string
	mu     sync.Mutex
}

func (tr *tracer) add(event string) {
	tr.mu.Lock()
	tr.events = append(tr.events, event)
	tr.mu.Unlock()
}

func (tr *tracer) snapshot() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	out := make([]string, len(tr.events))
	copy(out, tr.events)

	return out
}

func traceFeature(tr *tracer, name string) composure.Feature {
	return composure.Named(name, composure.FeatureFunc(
		func(_ *composure.Client, next composure.Step) composure.Step {
			return func(ctx context.Context, req *composure.Request) (*composure.Response, error) {
				tr.add(name + "-in")
				resp, err := next(ctx, req)
				tr.add(name + "-out")

				return resp, err
			}
		},
	))
}

// ---------------------------------------------------------------------------
// mapCache is a minimal composure.ResponseCache without expiry.
// ---------------------------------------------------------------------------

type mapCache struct {
	entries map[string]*composure.Response
	mu      sync.Mutex
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]*composure.Response{}}
}

func (m *mapCache) Get(key string) (*composure.Response, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.entries[key]

	return r, ok
}

func (m *mapCache) Set(key string, value *composure.Response, _ time.Duration) {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
}

func (m *mapCache) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}
