package composure_test

import (
	"testing"

	"github.com/byte4ever/composure"
)

func TestSortFeaturesIsStableByPriority(t *testing.T) {
	t.Parallel()

	auth := composure.Named("auth", composure.BearerToken("x"))
	retry := composure.Named("retry", composure.Retry(composure.RetryParams{}))
	idA := composure.Named("id-a", composure.RequestID(""))
	idB := composure.Named("id-b", composure.RequestID("X-Other"))

	got := composure.SortFeatures([]composure.FeatureEntry{
		{Feature: auth, Priority: composure.PriorityAuth},
		{Feature: idA, Priority: composure.PriorityRequestID},
		{Feature: retry, Priority: composure.PriorityRetry},
		{Feature: idB, Priority: composure.PriorityRequestID},
	})

	names := featureNames(got)
	want := []string{"id-a", "id-b", "retry", "auth"}

	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("SortFeatures() = %v, want %v", names, want)
		}
	}
}

func TestSortFeaturesEmpty(t *testing.T) {
	t.Parallel()

	if got := composure.SortFeatures(nil); got != nil {
		t.Fatalf("SortFeatures(nil) = %v, want nil", got)
	}
}
