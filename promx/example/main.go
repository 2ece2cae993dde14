// Example metrics: recording calls as Prometheus metrics and exposing them
// next to the readiness endpoint.
//
//nolint:forbidigo // This is an example program.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/byte4ever/composure"
	"github.com/byte4ever/composure/mock"
	"github.com/byte4ever/composure/promx"
)

func main() {
	promReg := prometheus.NewRegistry()
	clients := composure.NewRegistry()
	collector := promx.NewCollector(promReg, "composure")

	users := composure.New("users", mock.Respond(200, `[]`),
		composure.WithRegistry(clients),
		composure.WithFeatures(collector.Feature(), composure.RequestID("")),
	)

	billing := composure.New("billing", mock.Fail(errors.New("connection refused")),
		composure.WithRegistry(clients),
		composure.WithFeatures(
			collector.Feature(),
			composure.Breaker(composure.FailureThreshold(2)),
		),
	)

	for range 3 {
		call(users, "http://users/list")
		call(billing, "http://billing/invoices")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.Handle("/readyz", composure.ReadinessHandler(clients))

	srv := httptest.NewServer(mux)
	defer srv.Close()

	fmt.Println("=== /metrics (composure_*) ===")

	for _, line := range strings.Split(fetch(srv.URL+"/metrics"), "\n") {
		if strings.HasPrefix(line, "composure_requests_total") || strings.HasPrefix(line, "composure_errors_total") {
			fmt.Println(" ", line)
		}
	}

	fmt.Println("\n=== /readyz ===")
	fmt.Println(" ", fetch(srv.URL+"/readyz"))
}

func call(c *composure.Client, url string) {
	done := make(chan struct{})

	c.Get(context.Background(), url, func(_ *composure.Response, err error) {
		if err != nil {
			fmt.Printf("  %s: %v\n", c.Name(), err)
		}

		close(done)
	})

	<-done
}

func fetch(url string) string {
	resp, err := http.Get(url) //nolint:gosec,noctx // local test server
	if err != nil {
		return err.Error()
	}
	defer func() { _ = resp.Body.Close() }()

	data, _ := io.ReadAll(resp.Body)

	return strings.TrimSpace(string(data))
}
