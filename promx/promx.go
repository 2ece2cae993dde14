// Package promx records composure calls as Prometheus metrics.
package promx

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/byte4ever/composure"
)

// Collector holds the metric vectors updated by the feature returned from
// [Collector.Feature]. It is safe for concurrent use.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
	errorsTotal     *prometheus.CounterVec
}

// NewCollector registers the metric vectors with reg under namespace.
// Metric names are <namespace>_requests_total,
// <namespace>_request_duration_seconds, <namespace>_requests_in_flight and
// <namespace>_errors_total.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Calls completed, by client, method and status code.",
			},
			[]string{"client", "method", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Call duration in seconds, by client and method.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"client", "method"},
		),
		inFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Calls currently inside the chain, by client.",
			},
			[]string{"client"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Failed calls, by client, method and error kind.",
			},
			[]string{"client", "method", "kind"},
		),
	}
}

// Feature returns a feature measuring the inner chain. Calls ending with an
// error and no response are counted with status_code "error".
func (m *Collector) Feature() composure.Feature {
	return composure.Named("metrics", composure.FeatureFunc(
		func(c *composure.Client, next composure.Step) composure.Step {
			name := c.Name()
			clock := c.Clock()

			return func(ctx context.Context, req *composure.Request) (*composure.Response, error) {
				method := string(req.Method)

				gauge := m.inFlight.WithLabelValues(name)
				gauge.Inc()
				defer gauge.Dec()

				start := clock.Now()
				resp, err := next(ctx, req)

				m.requestDuration.WithLabelValues(name, method).
					Observe(clock.Since(start).Seconds())

				status := "error"
				if resp != nil {
					status = strconv.Itoa(resp.StatusCode())
				}

				m.requestsTotal.WithLabelValues(name, method, status).Inc()

				if err != nil {
					m.errorsTotal.WithLabelValues(name, method, errorKind(err)).Inc()
				}

				return resp, err
			}
		},
	))
}

// RequestsTotal returns the completed-calls counter.
func (m *Collector) RequestsTotal() *prometheus.CounterVec { return m.requestsTotal }

// RequestDuration returns the call duration histogram.
func (m *Collector) RequestDuration() *prometheus.HistogramVec { return m.requestDuration }

// InFlight returns the in-flight gauge.
func (m *Collector) InFlight() *prometheus.GaugeVec { return m.inFlight }

// ErrorsTotal returns the failed-calls counter.
func (m *Collector) ErrorsTotal() *prometheus.CounterVec { return m.errorsTotal }

func errorKind(err error) string {
	var pe composure.PipelineError

	switch {
	case errors.As(err, &pe) && pe.IsPipeline():
		return "pipeline"
	case composure.IsTransportError(err):
		return "transport"
	case composure.IsPermanent(err):
		return "permanent"
	default:
		return "other"
	}
}
