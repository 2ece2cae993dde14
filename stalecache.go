package composure

import (
	"context"
	"time"
)

// CacheResponses returns a feature answering GET requests from cache. A hit
// short-circuits the chain: inner features and the transport never run. A
// miss calls through and stores successful responses for ttl.
func CacheResponses(cache ResponseCache, ttl time.Duration) Feature {
	return Named("response_cache", FeatureFunc(func(c *Client, next Step) Step {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Method != MethodGet {
				return next(ctx, req)
			}

			key := req.Key()
			if cached, ok := cache.Get(key); ok {
				c.hooks.emitCacheHit(key)
				return cached.Clone(), nil
			}

			resp, err := next(ctx, req)
			if err == nil && resp != nil {
				cache.Set(key, resp.Clone(), ttl)
				c.hooks.emitCacheRefreshed(key)
			}

			return resp, err
		}
	}))
}

// StaleOnError returns a feature remembering the last good GET response per
// "METHOD URL" and serving it when the inner chain fails. Without a
// remembered response the failure is returned as is. Other methods pass
// through untouched: a failed write is never answered from the cache.
func StaleOnError(cache ResponseCache, ttl time.Duration) Feature {
	return Named("stale_cache", FeatureFunc(func(c *Client, next Step) Step {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Method != MethodGet {
				return next(ctx, req)
			}

			key := req.Key()

			resp, err := next(ctx, req)
			if err == nil {
				if resp != nil {
					cache.Set(key, resp.Clone(), ttl)
					c.hooks.emitCacheRefreshed(key)
				}

				return resp, nil
			}

			if cached, ok := cache.Get(key); ok {
				c.hooks.emitStaleServed(key)
				return cached.Clone(), nil
			}

			return resp, err
		}
	}))
}
