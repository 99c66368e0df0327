package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"
)

// ItemResult classifies one unit of work: success, ordinary failure, or a
// retryable throttle failure.
type ItemResult struct {
	Success   bool
	Throttled bool
	Err       error
}

// ExecutorOptions tunes the rate-adaptive batch executor.
type ExecutorOptions struct {
	// Width is the number of items executed concurrently per sub-batch.
	Width int

	// Delay is the nominal pause between sub-batches. The actual pause is
	// max(0, Delay - elapsed) so a slow sub-batch self-throttles.
	Delay time.Duration

	// RecoveryDelay replaces Delay after a sub-batch that saw at least one
	// throttle signal. The upstream limiter recovers on a fixed window, so
	// a flat long pause beats exponential backoff here.
	RecoveryDelay time.Duration
}

func (o ExecutorOptions) normalized() ExecutorOptions {
	if o.Width <= 0 {
		o.Width = 5
	}
	if o.Delay <= 0 {
		o.Delay = 500 * time.Millisecond
	}
	if o.RecoveryDelay <= o.Delay {
		o.RecoveryDelay = 10 * o.Delay
	}
	return o
}

// BatchProgress is the running total emitted after every sub-batch so long
// runs stay observable.
type BatchProgress struct {
	Processed   int
	Successful  int
	Failed      int
	Throttled   int
	ItemsPerSec float64
}

// BatchSummary is the final accounting of one executor run. Successful plus
// Failed always equals Total.
type BatchSummary struct {
	Total            int
	Successful       int
	Failed           int
	ThrottledBatches int
	Elapsed          time.Duration
}

// ItemsPerSec returns the measured throughput of the run.
func (s BatchSummary) ItemsPerSec() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total) / s.Elapsed.Seconds()
}

// ExecuteBatches applies work to every item in sub-batches of opts.Width,
// waiting for each sub-batch to settle before starting the next. A throttled
// result anywhere in a sub-batch stretches the pause before the next one to
// opts.RecoveryDelay. No item is ever dropped: a cancelled context fails the
// remaining items rather than skipping them, and a panicking work function
// is recorded as that item's failure.
//
// The progress callback, when non-nil, runs after every sub-batch on the
// calling goroutine.
func ExecuteBatches[T any](
	ctx context.Context,
	items []T,
	opts ExecutorOptions,
	work func(ctx context.Context, item T) ItemResult,
	progress func(BatchProgress),
) BatchSummary {
	opts = opts.normalized()
	summary := BatchSummary{Total: len(items)}
	if len(items) == 0 {
		return summary
	}

	start := time.Now()
	processed := 0
	throttledItems := 0

	for offset := 0; offset < len(items); offset += opts.Width {
		if ctx.Err() != nil {
			summary.Failed += len(items) - processed
			break
		}

		end := offset + opts.Width
		if end > len(items) {
			end = len(items)
		}
		batch := items[offset:end]

		batchStart := time.Now()
		results := runBatch(ctx, batch, work)

		batchThrottled := false
		for _, r := range results {
			processed++
			if r.Success {
				summary.Successful++
				continue
			}
			summary.Failed++
			if r.Throttled {
				batchThrottled = true
				throttledItems++
			}
		}
		if batchThrottled {
			summary.ThrottledBatches++
		}

		if progress != nil {
			elapsed := time.Since(start).Seconds()
			p := BatchProgress{
				Processed:  processed,
				Successful: summary.Successful,
				Failed:     summary.Failed,
				Throttled:  throttledItems,
			}
			if elapsed > 0 {
				p.ItemsPerSec = float64(processed) / elapsed
			}
			progress(p)
		}

		if end < len(items) {
			pause := opts.Delay - time.Since(batchStart)
			if batchThrottled {
				pause = opts.RecoveryDelay
			}
			if pause > 0 {
				select {
				case <-time.After(pause):
				case <-ctx.Done():
				}
			}
		}
	}

	summary.Elapsed = time.Since(start)
	return summary
}

// runBatch executes one sub-batch concurrently and waits for every worker
// to settle.
func runBatch[T any](ctx context.Context, batch []T, work func(ctx context.Context, item T) ItemResult) []ItemResult {
	results := make([]ItemResult, len(batch))
	var wg gosync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = ItemResult{Err: fmt.Errorf("worker panic: %v", r)}
				}
			}()
			results[i] = work(ctx, batch[i])
		}(i)
	}
	wg.Wait()
	return results
}
