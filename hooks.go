package composure

import "time"

// Hooks holds optional callbacks for pipeline lifecycle events. All fields
// are nil by default; set only the ones you care about. A Hooks value handed
// to [WithHooks] must not be mutated afterwards: emitters read the fields
// without synchronisation.
//
// Pattern: Observer — decouples event emission from consumers (logging,
// metrics, alerting) without features knowing about observers.
type Hooks struct {
	OnMockHit          func(method Method, url string)
	OnMockMiss         func(method Method, url string)
	OnRequestTimed     func(label string, elapsed time.Duration)
	OnRetry            func(attempt int, err error)
	OnCircuitOpen      func()
	OnCircuitClose     func()
	OnCircuitHalfOpen  func()
	OnRateLimited      func()
	OnBulkheadFull     func()
	OnBulkheadAcquired func()
	OnBulkheadReleased func()
	OnTimeout          func()
	OnCacheHit         func(key string)
	OnCacheRefreshed   func(key string)
	OnStaleServed      func(key string)
	OnFallbackUsed     func(err error)
}

func (h *Hooks) emitMockHit(method Method, url string) {
	if h.OnMockHit != nil {
		h.OnMockHit(method, url)
	}
}

func (h *Hooks) emitMockMiss(method Method, url string) {
	if h.OnMockMiss != nil {
		h.OnMockMiss(method, url)
	}
}

func (h *Hooks) emitRequestTimed(label string, elapsed time.Duration) {
	if h.OnRequestTimed != nil {
		h.OnRequestTimed(label, elapsed)
	}
}

func (h *Hooks) emitRetry(attempt int, err error) {
	if h.OnRetry != nil {
		h.OnRetry(attempt, err)
	}
}

func (h *Hooks) emitCircuitOpen() {
	if h.OnCircuitOpen != nil {
		h.OnCircuitOpen()
	}
}

func (h *Hooks) emitCircuitClose() {
	if h.OnCircuitClose != nil {
		h.OnCircuitClose()
	}
}

func (h *Hooks) emitCircuitHalfOpen() {
	if h.OnCircuitHalfOpen != nil {
		h.OnCircuitHalfOpen()
	}
}

func (h *Hooks) emitRateLimited() {
	if h.OnRateLimited != nil {
		h.OnRateLimited()
	}
}

func (h *Hooks) emitBulkheadFull() {
	if h.OnBulkheadFull != nil {
		h.OnBulkheadFull()
	}
}

func (h *Hooks) emitBulkheadAcquired() {
	if h.OnBulkheadAcquired != nil {
		h.OnBulkheadAcquired()
	}
}

func (h *Hooks) emitBulkheadReleased() {
	if h.OnBulkheadReleased != nil {
		h.OnBulkheadReleased()
	}
}

func (h *Hooks) emitTimeout() {
	if h.OnTimeout != nil {
		h.OnTimeout()
	}
}

func (h *Hooks) emitCacheHit(key string) {
	if h.OnCacheHit != nil {
		h.OnCacheHit(key)
	}
}

func (h *Hooks) emitCacheRefreshed(key string) {
	if h.OnCacheRefreshed != nil {
		h.OnCacheRefreshed(key)
	}
}

func (h *Hooks) emitStaleServed(key string) {
	if h.OnStaleServed != nil {
		h.OnStaleServed(key)
	}
}

func (h *Hooks) emitFallbackUsed(err error) {
	if h.OnFallbackUsed != nil {
		h.OnFallbackUsed(err)
	}
}
