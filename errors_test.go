package composure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/byte4ever/composure"
)

func TestTransientAndPermanent(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	tests := []struct {
		err           error
		name          string
		wantTransient bool
		wantPermanent bool
	}{
		{name: "nil", err: nil},
		{name: "unclassified", err: base, wantTransient: true},
		{name: "transient", err: composure.Transient(base), wantTransient: true},
		{name: "permanent", err: composure.Permanent(base), wantPermanent: true},
		{name: "wrapped permanent", err: fmt.Errorf("ctx: %w", composure.Permanent(base)), wantPermanent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := composure.IsTransient(tt.err); got != tt.wantTransient {
				t.Fatalf("IsTransient() = %v, want %v", got, tt.wantTransient)
			}

			if got := composure.IsPermanent(tt.err); got != tt.wantPermanent {
				t.Fatalf("IsPermanent() = %v, want %v", got, tt.wantPermanent)
			}
		})
	}
}

func TestClassificationKeepsCause(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	if !errors.Is(composure.Permanent(base), base) {
		t.Fatal("Permanent() lost the cause")
	}

	if !errors.Is(composure.Transient(base), base) {
		t.Fatal("Transient() lost the cause")
	}

	if composure.Transient(nil) != nil || composure.Permanent(nil) != nil {
		t.Fatal("wrapping nil should give nil")
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("outer: %w", &composure.TransportError{
		Method: composure.MethodGet,
		URL:    "http://svc/a",
		Err:    cause,
	})

	if !composure.IsTransportError(err) {
		t.Fatal("IsTransportError() = false, want true")
	}

	if !errors.Is(err, cause) {
		t.Fatal("TransportError does not unwrap to its cause")
	}

	if composure.IsTransportError(cause) {
		t.Fatal("IsTransportError(cause) = true, want false")
	}
}

func TestPipelineErrorsAreMarked(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		composure.ErrFeatureConfig,
		composure.ErrNoResponse,
		composure.ErrCircuitOpen,
		composure.ErrRateLimited,
		composure.ErrBulkheadFull,
		composure.ErrTimeout,
		composure.ErrRetriesExhausted,
	} {
		var pe composure.PipelineError
		if !errors.As(fmt.Errorf("wrapped: %w", err), &pe) || !pe.IsPipeline() {
			t.Fatalf("%v is not a pipeline error", err)
		}
	}
}
