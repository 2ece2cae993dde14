package composure

import (
	"slices"
	"sync"
	"sync/atomic"
)

type (
	// ReadinessStatus is the result of checking every registered client.
	ReadinessStatus struct {
		Clients []ClientStatus `json:"clients"`
		Ready   bool           `json:"ready"`
	}

	// Registry tracks health reporters and client configurations loaded by
	// [LoadConfig]. Reporters are keyed by name: registering a name again
	// replaces the earlier reporter, so rebuilding a client does not leave a
	// stale entry behind.
	//
	// Pattern: Singleton — DefaultRegistry uses sync.OnceValue for lazy
	// init; explicit registries serve tests and multi-tenant setups.
	Registry struct {
		reporters atomic.Pointer[[]HealthReporter]
		configs   map[string]ClientConfig
		mu        sync.Mutex
	}
)

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultRegistry = sync.OnceValue(NewRegistry)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{configs: map[string]ClientConfig{}}
	r.reporters.Store(&[]HealthReporter{})

	return r
}

// Register adds hr, replacing a reporter registered under the same name.
// Named clients call it from [New].
func (r *Registry) Register(hr HealthReporter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Readers may still iterate the current slice; publish a new one.
	updated := slices.Clone(*r.reporters.Load())

	idx := slices.IndexFunc(updated, func(existing HealthReporter) bool {
		return existing.Name() == hr.Name()
	})
	if idx >= 0 {
		updated[idx] = hr
	} else {
		updated = append(updated, hr)
	}

	r.reporters.Store(&updated)
}

// Reporter returns the reporter registered under name.
func (r *Registry) Reporter(name string) (HealthReporter, bool) {
	for _, hr := range *r.reporters.Load() {
		if hr.Name() == name {
			return hr, true
		}
	}

	return nil, false
}

// Config returns the configuration loaded for name.
func (r *Registry) Config(name string) (ClientConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cc, ok := r.configs[name]

	return cc, ok
}

func (r *Registry) setConfigs(configs map[string]ClientConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, cc := range configs {
		r.configs[name] = cc
	}
}

// CheckReadiness collects every reporter's status. Ready is false as soon
// as one client is critical and unhealthy.
func (r *Registry) CheckReadiness() ReadinessStatus {
	reporters := *r.reporters.Load()

	status := ReadinessStatus{
		Ready:   true,
		Clients: make([]ClientStatus, 0, len(reporters)),
	}

	for _, hr := range reporters {
		cs := hr.HealthStatus()
		status.Clients = append(status.Clients, cs)

		if cs.Criticality == CriticalityCritical && !cs.Healthy {
			status.Ready = false
		}
	}

	return status
}

// DefaultRegistry returns the process-wide registry, creating it on first
// use.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
