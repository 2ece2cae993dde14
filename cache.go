package composure

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// Cache is implemented by cache adapters (see the ristretto and otter
	// modules). TTL is passed per Set; the adapter handles expiration.
	Cache[K comparable, V any] interface {
		Get(key K) (V, bool)
		Set(key K, value V, ttl time.Duration)
		Delete(key K)
	}

	// ResponseCache is the cache shape used by [CacheResponses] and
	// [StaleOnError]: responses keyed by "METHOD URL".
	ResponseCache = Cache[string, *Response]

	// CacheConfig sizes a cache instance.
	CacheConfig struct {
		// Options holds adapter-specific settings.
		Options map[string]any
		TTL     time.Duration
		MaxSize int
	}

	cacheConfigFile struct {
		Caches map[string]cacheConfigJSON `json:"caches"`
	}

	cacheConfigJSON struct {
		Options map[string]any `json:"options,omitempty"`
		TTL     string         `json:"ttl"`
		MaxSize int            `json:"max_size"`
	}
)

// LoadCacheConfig reads the "caches" section of a JSON file and returns the
// entry called name.
func LoadCacheConfig(path, name string) (CacheConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CacheConfig{}, fmt.Errorf("composure: read cache config: %w", err)
	}

	var cfg cacheConfigFile
	if err = json.Unmarshal(data, &cfg); err != nil {
		return CacheConfig{}, fmt.Errorf("composure: parse cache config: %w", err)
	}

	raw, ok := cfg.Caches[name]
	if !ok {
		return CacheConfig{}, fmt.Errorf("composure: cache %q not found in config", name)
	}

	cc := CacheConfig{Options: raw.Options, MaxSize: raw.MaxSize}

	if raw.TTL != "" {
		if cc.TTL, err = time.ParseDuration(raw.TTL); err != nil {
			return CacheConfig{}, fmt.Errorf("composure: cache %q: ttl: %w", name, err)
		}
	}

	return cc, nil
}
