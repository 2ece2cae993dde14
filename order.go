package composure

import "sort"

// FeatureEntry pairs a feature with the priority deciding its layer.
type FeatureEntry struct {
	Feature  Feature
	Name     string
	Priority int
}

// Layer priorities used by [BuildFeatures]. Lower priority = outer layer.
const (
	PriorityRequestID      = 0 // outermost: one ID per call, not per attempt
	PriorityLogging        = 1
	PriorityTimeout        = 2 // global deadline, retries included
	PriorityCircuitBreaker = 3
	PriorityRateLimiter    = 4
	PriorityBulkhead       = 5
	PriorityRetry          = 6
	PriorityAuth           = 7 // innermost, closest to the terminal step
)

// SortFeatures orders entries by priority, lowest first, and returns the
// features in registration order. Entries sharing a priority keep their
// relative order.
func SortFeatures(entries []FeatureEntry) []Feature {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]FeatureEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	features := make([]Feature, 0, len(sorted))
	for _, e := range sorted {
		features = append(features, e.Feature)
	}

	return features
}
