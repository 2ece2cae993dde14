package composure

import (
	"context"
	"sync/atomic"
)

type (
	// Bulkhead caps the number of calls inside the inner chain at once.
	//
	// Pattern: Bulkhead — semaphore-based concurrency limiter; lock-free via
	// atomic CAS for slot acquisition.
	Bulkhead struct {
		hooks         *Hooks
		maxConcurrent int64
		current       atomic.Int64
	}

	bulkheadFeature struct {
		maxConcurrent int
	}
)

// NewBulkhead creates a bulkhead admitting maxConcurrent simultaneous calls.
func NewBulkhead(maxConcurrent int, hooks *Hooks) *Bulkhead {
	return &Bulkhead{maxConcurrent: int64(maxConcurrent), hooks: hooks}
}

// Acquire takes a slot or returns [ErrBulkheadFull].
func (b *Bulkhead) Acquire() error {
	for {
		cur := b.current.Load()
		if cur >= b.maxConcurrent {
			b.hooks.emitBulkheadFull()
			return ErrBulkheadFull
		}

		if b.current.CompareAndSwap(cur, cur+1) {
			b.hooks.emitBulkheadAcquired()
			return nil
		}
	}
}

// Release gives a slot back.
func (b *Bulkhead) Release() {
	b.current.Add(-1)
	b.hooks.emitBulkheadReleased()
}

// Full reports whether every slot is taken.
func (b *Bulkhead) Full() bool {
	return b.current.Load() >= b.maxConcurrent
}

// InFlight returns the number of slots in use.
func (b *Bulkhead) InFlight() int {
	return int(b.current.Load())
}

// MaxConcurrent returns a feature rejecting calls with [ErrBulkheadFull]
// once n of them are inside the inner chain. Slots are counted per client.
func MaxConcurrent(n int) Feature {
	return Named("bulkhead", &bulkheadFeature{maxConcurrent: n})
}

func (f *bulkheadFeature) bind(c *Client) {
	f.bulkhead(c)
}

func (f *bulkheadFeature) bulkhead(c *Client) *Bulkhead {
	return featureState(c, f, func() *Bulkhead {
		bh := NewBulkhead(f.maxConcurrent, &c.hooks)
		c.bulkheads = append(c.bulkheads, bh)

		return bh
	})
}

func (f *bulkheadFeature) Wrap(c *Client, next Step) (Step, error) {
	bh := f.bulkhead(c)

	return func(ctx context.Context, req *Request) (*Response, error) {
		if err := bh.Acquire(); err != nil {
			return nil, err
		}
		defer bh.Release()

		return next(ctx, req)
	}, nil
}
