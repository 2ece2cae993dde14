package composure

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// ReadinessHandler reports the readiness of every client registered with
// reg: 200 when no client is critically unhealthy, 503 otherwise. The body
// is always a JSON-encoded [ReadinessStatus].
func ReadinessHandler(reg *Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := reg.CheckReadiness()

		w.Header().Set("Content-Type", "application/json")

		if status.Ready {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		//nolint:errcheck // best-effort JSON encoding to HTTP response
		_ = json.NewEncoder(w).Encode(status)
	})
}
