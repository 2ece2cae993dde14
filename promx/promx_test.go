package promx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/composure"
	"github.com/byte4ever/composure/mock"
	"github.com/byte4ever/composure/promx"
)

func call(t *testing.T, c *composure.Client, url string) error {
	t.Helper()

	done := make(chan error, 1)

	c.Get(context.Background(), url, func(_ *composure.Response, err error) { done <- err })

	return <-done
}

func TestCollectorCountsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := promx.NewCollector(reg, "test")

	ok := composure.New("users", mock.Respond(200, "{}"),
		composure.WithRegistry(composure.NewRegistry()),
		composure.WithFeatures(collector.Feature()),
	)

	for range 3 {
		require.NoError(t, call(t, ok, "http://users/a"))
	}

	failing := composure.New("billing", mock.Fail(errors.New("down")),
		composure.WithRegistry(composure.NewRegistry()),
		composure.WithFeatures(collector.Feature()),
	)

	require.Error(t, call(t, failing, "http://billing/a"))

	require.Equal(t, 3.0, testutil.ToFloat64(
		collector.RequestsTotal().WithLabelValues("users", "GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(
		collector.RequestsTotal().WithLabelValues("billing", "GET", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(
		collector.ErrorsTotal().WithLabelValues("billing", "GET", "transport")))
	require.Equal(t, 0.0, testutil.ToFloat64(
		collector.InFlight().WithLabelValues("users")))
	require.Equal(t, 2, testutil.CollectAndCount(collector.RequestDuration()))
}

func TestCollectorClassifiesPipelineErrors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := promx.NewCollector(reg, "kinds")

	c := composure.New("", mock.Fail(errors.New("down")), composure.WithFeatures(
		collector.Feature(),
		composure.Breaker(composure.FailureThreshold(1)),
	))

	require.Error(t, call(t, c, "http://svc/a"))
	require.ErrorIs(t, call(t, c, "http://svc/a"), composure.ErrCircuitOpen)

	require.Equal(t, 1.0, testutil.ToFloat64(
		collector.ErrorsTotal().WithLabelValues("", "GET", "transport")))
	require.Equal(t, 1.0, testutil.ToFloat64(
		collector.ErrorsTotal().WithLabelValues("", "GET", "pipeline")))
}

func TestNewCollectorRegistersMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	collector := promx.NewCollector(reg, "reg")

	collector.RequestsTotal().WithLabelValues("c", "GET", "200").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	require.Equal(t, "reg_requests_total", families[0].GetName())
}
