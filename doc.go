// Package composure builds outbound HTTP calls out of composable features.
//
// The central type is [Client], which holds an ordered list of [Feature]
// values and a shared header mapping. Every call builds a [Request], folds the
// features around a terminal step (mock lookup, else transport) and delivers
// the resulting [Response] to the caller's [Callback] exactly once.
//
// The first registered feature is the outermost layer: it sees the request
// first and the response last.
package composure
