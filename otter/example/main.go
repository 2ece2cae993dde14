// Example stale-cache: serving the last good response, kept in an otter
// cache, while the remote end fails.
//
//nolint:forbidigo // This is an example program.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/byte4ever/composure"
	"github.com/byte4ever/composure/mock"
	"github.com/byte4ever/composure/otter"
)

func main() {
	down := false

	transport := mock.Respond(200, `{"price":42}`)
	handler := transport.Handler
	transport.Handler = func(ctx context.Context, req *composure.Request) (*composure.RawResponse, error) {
		if down {
			return nil, &composure.TransportError{Method: req.Method, URL: req.URL, Err: errors.New("service unavailable")}
		}

		return handler(ctx, req)
	}

	stale := otter.NewResponseCache(composure.CacheConfig{MaxSize: 1000, TTL: time.Minute})

	client := composure.New("", transport,
		composure.WithHooks(composure.Hooks{
			OnStaleServed:    func(key string) { fmt.Printf("  [stale served]    %s\n", key) },
			OnCacheRefreshed: func(key string) { fmt.Printf("  [cache refreshed] %s\n", key) },
		}),
		composure.WithFeatures(composure.StaleOnError(stale, time.Minute)),
	)

	// Call 1: success populates the cache.
	get(client)

	// Call 2: the remote end fails; the previous value is served.
	down = true
	get(client)

	// Call 3: nothing remembered for this URL, the error propagates.
	done := make(chan struct{})
	client.Get(context.Background(), "http://pricing/other", func(_ *composure.Response, err error) {
		fmt.Println("  => error:", err)
		close(done)
	})
	<-done
}

func get(c *composure.Client) {
	done := make(chan struct{})

	c.Get(context.Background(), "http://pricing/items/1", func(resp *composure.Response, err error) {
		defer close(done)

		if err != nil {
			fmt.Println("  => error:", err)
			return
		}

		body, _ := resp.Body()
		fmt.Printf("  => %d %s\n", resp.StatusCode(), body)
	})

	<-done
}
