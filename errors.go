package composure

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error classification wrappers
// ---------------------------------------------------------------------------.

type (
	// PipelineError identifies errors produced by the pipeline itself (the
	// composition engine and the features shipped with this package), as
	// opposed to errors reported by the transport or by user features.
	//nolint:iface // exported for consumer error classification.
	PipelineError interface {
		error
		// IsPipeline reports whether this error originates from the
		// pipeline layer.
		IsPipeline() bool
	}

	// TransportError is reported by transport adapters when a request could
	// not be exchanged with the remote end (connection refused, DNS failure,
	// deadline exceeded). The pipeline never rewraps it.
	TransportError struct {
		Err    error
		Method Method
		URL    string
	}

	transientError struct {
		err error
	}

	permanentError struct {
		err error
	}

	// pipelineError is the concrete type backing all sentinel errors.
	pipelineError string
)

// Sentinel pipeline errors.
var (
	// ErrFeatureConfig is returned when a feature cannot be composed, for
	// instance because its named arguments do not fit its parameter record.
	ErrFeatureConfig error = pipelineError("invalid feature configuration")
	// ErrNoResponse is returned when a step returns neither a response nor
	// an error.
	ErrNoResponse error = pipelineError("step produced no response")
	// ErrNoTransport is returned when a call reaches the terminal step of a
	// client that has no transport.
	ErrNoTransport error = pipelineError("no transport configured")
	// ErrStepPanicked is returned when a step panics while running a call.
	ErrStepPanicked error = pipelineError("step panicked")
	// ErrUnsupportedMethod is returned when a request uses a method other
	// than GET, PUT, POST or DELETE.
	ErrUnsupportedMethod error = pipelineError("unsupported method")
	// ErrInvalidURL is returned when an endpoint is not a valid URL.
	ErrInvalidURL error = pipelineError("invalid url")
	// ErrCircuitOpen is returned when the circuit breaker is in the open state.
	ErrCircuitOpen error = pipelineError("circuit breaker is open")
	// ErrRateLimited is returned when a request is rejected by a rate limiter.
	ErrRateLimited error = pipelineError("rate limited")
	// ErrBulkheadFull is returned when the bulkhead has no available capacity.
	ErrBulkheadFull error = pipelineError("bulkhead full")
	// ErrTimeout is returned when a call exceeds its deadline.
	ErrTimeout error = pipelineError("timeout")
	// ErrRetriesExhausted is returned when all retry attempts have been used.
	ErrRetriesExhausted error = pipelineError("retries exhausted")
)

func (e *transientError) Error() string { return "transient: " + e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func (e *permanentError) Error() string { return "permanent: " + e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (e pipelineError) Error() string { return string(e) }

// IsPipeline reports whether the error is a pipeline infrastructure error.
func (pipelineError) IsPipeline() bool { return true }

// Error returns "METHOD URL: cause".
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap exposes the underlying transport failure.
func (e *TransportError) Unwrap() error { return e.Err }

// Transient wraps err to mark it as a transient (retriable) error.
// Returns nil if err is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}

	return &transientError{err: err}
}

// Permanent wraps err to mark it as a permanent (non-retriable) error.
// Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// IsTransient reports whether err is transient. Unclassified errors are
// treated as transient. Returns false for nil.
func IsTransient(err error) bool {
	return err != nil && !IsPermanent(err)
}

// IsPermanent reports whether err was explicitly marked as permanent.
// Returns false for nil and for unclassified errors.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}

	var pe *permanentError

	return errors.As(err, &pe)
}

// IsTransportError reports whether err carries a [TransportError].
func IsTransportError(err error) bool {
	var te *TransportError

	return errors.As(err, &te)
}
