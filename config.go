package composure

import (
	"errors"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type (
	configFile struct {
		Clients map[string]ClientConfig `json:"clients"`
	}

	// ClientConfig holds the decoded configuration of one client. Embed it
	// in your own config structs and call [BuildOptions], or load a whole
	// file with [LoadConfig].
	ClientConfig struct {
		// Headers seeds the client's shared headers.
		Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
		// Timeout bounds each transport exchange. Example: "60s".
		Timeout *string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		// Features lists the features to register.
		Features *FeaturesConfig `json:"features,omitempty" yaml:"features,omitempty"`
	}

	// FeaturesConfig selects built-in features. Whatever the field order in
	// the file, features are layered by the Priority constants.
	FeaturesConfig struct {
		// RequestID is the header carrying a per-call UUID.
		RequestID *string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
		// Logging enables outcome logging.
		Logging *bool `json:"logging,omitempty" yaml:"logging,omitempty"`
		// Timeout is the per-call deadline. Example: "2s".
		Timeout *string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		// CircuitBreaker enables a circuit breaker.
		CircuitBreaker *CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
		// RateLimit is the maximum calls per second.
		RateLimit *float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
		// Bulkhead is the maximum number of concurrent calls.
		Bulkhead *int `json:"bulkhead,omitempty" yaml:"bulkhead,omitempty"`
		// Retry enables retries.
		Retry *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
		// BearerToken is sent as "Authorization: Bearer <token>".
		BearerToken *string `json:"bearer_token,omitempty" yaml:"bearer_token,omitempty"`
	}

	// CircuitBreakerConfig holds circuit breaker settings.
	CircuitBreakerConfig struct {
		// RecoveryTimeout, e.g. "30s".
		RecoveryTimeout *string `json:"recovery_timeout,omitempty" yaml:"recovery_timeout,omitempty"`
		// FailureThreshold, e.g. 5.
		FailureThreshold *int `json:"failure_threshold,omitempty" yaml:"failure_threshold,omitempty"`
		// HalfOpenMaxAttempts, e.g. 2.
		HalfOpenMaxAttempts *int `json:"half_open_max_attempts,omitempty" yaml:"half_open_max_attempts,omitempty"`
	}

	// RetryConfig holds retry settings.
	RetryConfig struct {
		// Backoff is required: "constant", "exponential", "linear" or
		// "exponential_jitter".
		Backoff *string `json:"backoff,omitempty" yaml:"backoff,omitempty"`
		// BaseDelay is required, e.g. "100ms".
		BaseDelay *string `json:"base_delay,omitempty" yaml:"base_delay,omitempty"`
		// MaxDelay caps the backoff, e.g. "5s".
		MaxDelay *string `json:"max_delay,omitempty" yaml:"max_delay,omitempty"`
		// MaxAttempts counts the first attempt.
		MaxAttempts *int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	}
)

// LoadConfig reads a JSON file of client configurations into a new
// [Registry]. Every entry is validated eagerly; clients are created later
// by [GetClient].
func LoadConfig(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("composure: read config: %w", err)
	}

	var cfg configFile
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("composure: parse config: %w", err)
	}

	for name, cc := range cfg.Clients {
		if _, buildErr := BuildOptions(&cc); buildErr != nil {
			return nil, fmt.Errorf("composure: client %q: %w: %w", name, ErrFeatureConfig, buildErr)
		}
	}

	reg := NewRegistry()
	reg.setConfigs(cfg.Clients)

	return reg, nil
}

// BuildOptions converts a [ClientConfig] into client options. Each call
// builds fresh stateful features, so the options are safe to hand to one
// new client.
func BuildOptions(cc *ClientConfig) ([]Option, error) {
	var opts []Option

	if len(cc.Headers) > 0 {
		opts = append(opts, WithHeaders(cc.Headers))
	}

	if cc.Timeout != nil {
		d, err := time.ParseDuration(*cc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}

		opts = append(opts, WithRequestTimeout(d))
	}

	if cc.Features != nil {
		features, err := BuildFeatures(cc.Features)
		if err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}

		opts = append(opts, WithFeatures(features...))
	}

	return opts, nil
}

// BuildFeatures converts a [FeaturesConfig] into features ordered by layer
// priority.
func BuildFeatures(fc *FeaturesConfig) ([]Feature, error) {
	var entries []FeatureEntry

	add := func(priority int, name string, f Feature) {
		entries = append(entries, FeatureEntry{Feature: f, Name: name, Priority: priority})
	}

	if fc.RequestID != nil {
		add(PriorityRequestID, "request_id", RequestID(*fc.RequestID))
	}

	if fc.Logging != nil && *fc.Logging {
		add(PriorityLogging, "logging", Logging())
	}

	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}

		add(PriorityTimeout, "timeout", Timeout(d))
	}

	if fc.CircuitBreaker != nil {
		cbOpts, err := circuitBreakerOptions(fc.CircuitBreaker)
		if err != nil {
			return nil, err
		}

		add(PriorityCircuitBreaker, "circuit_breaker", Breaker(cbOpts...))
	}

	if fc.RateLimit != nil {
		add(PriorityRateLimiter, "rate_limiter", RateLimit(*fc.RateLimit))
	}

	if fc.Bulkhead != nil {
		add(PriorityBulkhead, "bulkhead", MaxConcurrent(*fc.Bulkhead))
	}

	if fc.Retry != nil {
		params, err := retryParams(fc.Retry)
		if err != nil {
			return nil, fmt.Errorf("retry: %w", err)
		}

		add(PriorityRetry, "retry", Retry(params))
	}

	if fc.BearerToken != nil {
		add(PriorityAuth, "bearer_auth", BearerToken(*fc.BearerToken))
	}

	return SortFeatures(entries), nil
}

func circuitBreakerOptions(cfg *CircuitBreakerConfig) ([]CircuitBreakerOption, error) {
	var opts []CircuitBreakerOption

	if cfg.FailureThreshold != nil {
		opts = append(opts, FailureThreshold(*cfg.FailureThreshold))
	}

	if cfg.RecoveryTimeout != nil {
		d, err := time.ParseDuration(*cfg.RecoveryTimeout)
		if err != nil {
			return nil, fmt.Errorf("circuit_breaker.recovery_timeout: %w", err)
		}

		opts = append(opts, RecoveryTimeout(d))
	}

	if cfg.HalfOpenMaxAttempts != nil {
		opts = append(opts, HalfOpenMaxAttempts(*cfg.HalfOpenMaxAttempts))
	}

	return opts, nil
}

func retryParams(cfg *RetryConfig) (RetryParams, error) {
	var params RetryParams

	if cfg.Backoff == nil {
		return params, errors.New("backoff is required")
	}

	if cfg.BaseDelay == nil {
		return params, errors.New("base_delay is required")
	}

	base, err := time.ParseDuration(*cfg.BaseDelay)
	if err != nil {
		return params, fmt.Errorf("base_delay: %w", err)
	}

	if params.Backoff, err = ParseBackoff(*cfg.Backoff, base); err != nil {
		return params, err
	}

	if cfg.MaxDelay != nil {
		if params.MaxDelay, err = time.ParseDuration(*cfg.MaxDelay); err != nil {
			return params, fmt.Errorf("max_delay: %w", err)
		}
	}

	if cfg.MaxAttempts != nil {
		params.MaxAttempts = *cfg.MaxAttempts
	}

	return params, nil
}

// GetClient creates the client called name from a registry filled by
// [LoadConfig] and registers it there. Unknown names give a bare client.
// opts are applied after the configured ones, so their features become
// inner layers and their settings win.
func GetClient(reg *Registry, name string, transport Transport, opts ...Option) *Client {
	cc, ok := reg.Config(name)

	allOpts := []Option{WithRegistry(reg)}

	if ok {
		if configOpts, err := BuildOptions(&cc); err == nil {
			allOpts = append(allOpts, configOpts...)
		}
	}

	allOpts = append(allOpts, opts...)

	return New(name, transport, allOpts...)
}
