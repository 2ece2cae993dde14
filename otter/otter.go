// Package otter backs composure response caches with Otter.
package otter

import (
	"time"

	"github.com/maypok86/otter"

	"github.com/byte4ever/composure"
)

type adapter[K comparable, V any] struct {
	cache otter.CacheWithVariableTTL[K, V]
}

// MustNew creates a composure.Cache backed by an Otter cache with per-entry
// TTL, holding at most cfg.MaxSize entries. It panics if the cache cannot
// be built.
//
//nolint:ireturn // generic adapter returned behind the Cache interface
func MustNew[K comparable, V any](cfg composure.CacheConfig) composure.Cache[K, V] {
	cache, err := otter.MustBuilder[K, V](cfg.MaxSize).
		WithVariableTTL().
		Build()
	if err != nil {
		panic("composure/otter: build cache: " + err.Error())
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

func (a *adapter[K, V]) Set(key K, value V, ttl time.Duration) {
	a.cache.Set(key, value, ttl)
}

func (a *adapter[K, V]) Delete(key K) {
	a.cache.Delete(key)
}
