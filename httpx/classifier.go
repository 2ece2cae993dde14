package httpx

import (
	"context"
	"strconv"

	"github.com/byte4ever/composure"
)

// ErrorClass tells the pipeline how to treat an HTTP status code.
type ErrorClass int

const (
	// Success means the call succeeded (e.g. 2xx).
	Success ErrorClass = iota
	// Transient means the failure is retriable (e.g. 429, 503).
	Transient
	// Permanent means the failure is not retriable (e.g. 400).
	Permanent
)

// Classifier maps an HTTP status code to an [ErrorClass].
//
// Pattern: Strategy — caller injects classification logic without
// modifying the feature.
type Classifier func(statusCode int) ErrorClass

// StatusError is returned when the classifier marks a status code as
// Transient or Permanent. The response stays available for inspection and
// is also returned next to the error.
type StatusError struct {
	Response   *composure.Response
	StatusCode int
}

// Error returns "http status <code>".
func (e *StatusError) Error() string {
	return "http status " + strconv.Itoa(e.StatusCode)
}

// DefaultClassifier treats 2xx and 3xx as success, 408, 429 and 5xx except
// 501 as transient, and everything else as permanent.
func DefaultClassifier(code int) ErrorClass {
	switch {
	case code < 400:
		return Success
	case code == 408, code == 429:
		return Transient
	case code >= 500 && code != 501:
		return Transient
	default:
		return Permanent
	}
}

// StatusClassifier returns a feature turning classified status codes into
// errors: transient ones wrapped with composure.Transient, permanent ones
// with composure.Permanent. Register it inside retry and circuit breaker
// features so they see the statuses as failures.
func StatusClassifier(cl Classifier) composure.Feature {
	if cl == nil {
		cl = DefaultClassifier
	}

	return composure.Named("status_classifier", composure.FeatureFunc(
		func(_ *composure.Client, next composure.Step) composure.Step {
			return func(ctx context.Context, req *composure.Request) (*composure.Response, error) {
				resp, err := next(ctx, req)
				if err != nil || resp == nil {
					return resp, err
				}

				statusErr := &StatusError{Response: resp, StatusCode: resp.StatusCode()}

				switch cl(resp.StatusCode()) {
				case Transient:
					return resp, composure.Transient(statusErr)
				case Permanent:
					return resp, composure.Permanent(statusErr)
				default:
					return resp, nil
				}
			}
		},
	))
}
