package composure

type (
	// HealthReporter is implemented by [Client]. Reporters can depend on one
	// another through [DependsOn].
	HealthReporter interface {
		Name() string
		HealthStatus() ClientStatus
	}

	// Criticality represents how an unhealthy feature affects readiness.
	Criticality int

	// ClientStatus is the health snapshot of one client.
	ClientStatus struct {
		Name         string         `json:"name"`
		State        string         `json:"state"`
		Dependencies []ClientStatus `json:"dependencies,omitempty"`
		Criticality  Criticality    `json:"criticality"`
		Healthy      bool           `json:"healthy"`
	}
)

const (
	// CriticalityNone means no stateful feature reports trouble.
	CriticalityNone Criticality = iota
	// CriticalityDegraded means the client still serves but is impaired.
	CriticalityDegraded
	// CriticalityCritical means the client cannot reliably serve calls.
	CriticalityCritical
)

// String returns the criticality as "none", "degraded" or "critical".
func (c Criticality) String() string {
	switch c {
	case CriticalityDegraded:
		return "degraded"
	case CriticalityCritical:
		return "critical"
	default:
		return "none"
	}
}

// HealthStatus derives the client's health from its stateful features:
// an open breaker is critical; a saturated rate limiter or a full bulkhead
// is degraded. Critical unhealthy dependencies degrade this client.
func (c *Client) HealthStatus() ClientStatus {
	status := ClientStatus{
		Name:    c.name,
		Healthy: true,
		State:   "healthy",
	}

	c.stateMu.Lock()
	breakers, limiters, bulkheads := c.breakers, c.limiters, c.bulkheads
	c.stateMu.Unlock()

	for _, cb := range breakers {
		switch cb.State() {
		case "open":
			status.Healthy = false
			status.Criticality = CriticalityCritical
			status.State = "circuit_open"
		case "half_open":
			if status.Healthy {
				status.State = "circuit_half_open"
			}
		}
	}

	for _, rl := range limiters {
		if !rl.Saturated() {
			continue
		}

		status.Criticality = max(status.Criticality, CriticalityDegraded)

		if status.State == "healthy" {
			status.State = "rate_limited"
		}
	}

	for _, bh := range bulkheads {
		if !bh.Full() {
			continue
		}

		status.Criticality = max(status.Criticality, CriticalityDegraded)

		if status.State == "healthy" {
			status.State = "bulkhead_full"
		}
	}

	for _, dep := range c.deps {
		depStatus := dep.HealthStatus()
		status.Dependencies = append(status.Dependencies, depStatus)

		if depStatus.Criticality == CriticalityCritical && !depStatus.Healthy {
			status.Criticality = max(status.Criticality, CriticalityDegraded)
		}
	}

	return status
}
