// Package ristretto backs composure response caches with Ristretto.
package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/byte4ever/composure"
)

type (
	// Key is the subset of ristretto key types that are also comparable.
	Key interface {
		uint64 | string | byte | int | int32 | uint32 | int64
	}

	adapter[K Key, V any] struct {
		cache *ristretto.Cache[K, V]
	}
)

// MustNew creates a composure.Cache backed by Ristretto, sized by
// cfg.MaxSize with every entry costing 1. It panics if the cache cannot be
// built.
//
//nolint:ireturn // generic adapter returned behind the Cache interface
func MustNew[K Key, V any](cfg composure.CacheConfig) composure.Cache[K, V] {
	// nolint:mnd // Ristretto recommends 10x max size for counters and 64
	// buffer items.
	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: int64(cfg.MaxSize) * 10,
		MaxCost:     int64(cfg.MaxSize),
		BufferItems: 64,
	})
	if err != nil {
		panic("composure/ristretto: build cache: " + err.Error())
	}

	return &adapter[K, V]{cache: cache}
}

// NewResponseCache is MustNew for the response caches used by
// composure.CacheResponses and composure.StaleOnError.
//
//nolint:ireturn // see MustNew
func NewResponseCache(cfg composure.CacheConfig) composure.ResponseCache {
	return MustNew[string, *composure.Response](cfg)
}

//nolint:ireturn // generic type parameter V, not an interface
func (a *adapter[K, V]) Get(key K) (V, bool) {
	return a.cache.Get(key)
}

// Set admits the value asynchronously; a Get right after Set may miss until
// Ristretto has processed its buffers.
func (a *adapter[K, V]) Set(key K, value V, ttl time.Duration) {
	a.cache.SetWithTTL(key, value, 1, ttl)
}

func (a *adapter[K, V]) Delete(key K) {
	a.cache.Del(key)
}
