// Package fanout runs a worker over a batch of items with a fixed cap on
// in-flight operations, capturing every per-item outcome in input order.
package fanout

import (
	"context"
	"sync"
	"sync/atomic"
)

// Result holds the outcome for a single item. Exactly one of Value/Err is
// meaningful; a worker failure never aborts its siblings.
type Result[R any] struct {
	Value R
	Err   error
}

// RunBounded invokes worker on every item with at most limit operations in
// flight. min(limit, len(items)) goroutines share a single index counter,
// each repeatedly claiming the next unclaimed item and writing its result
// into the slot at that index, so the returned slice always matches the
// input order regardless of completion order. A limit below 1 is treated
// as 1.
func RunBounded[T, R any](
	ctx context.Context,
	items []T,
	limit int,
	worker func(ctx context.Context, item T, index int) (R, error),
) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(items) {
					return
				}
				v, err := worker(ctx, items[i], i)
				results[i] = Result[R]{Value: v, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}
