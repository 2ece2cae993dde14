// Package httpx connects composure clients to net/http.
//
// [Transport] is the default transport adapter: it performs one exchange
// per call through an http.Client, bounded by a ceiling of in-flight
// requests. [StatusClassifier] is a feature turning HTTP status codes into
// transient or permanent errors so retry and circuit breaker features can
// act on them.
package httpx
