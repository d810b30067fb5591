package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBatchSize  = 20
	DefaultMaxWorkers = 5
	DefaultBatchDelay = 10 * time.Second
	DefaultInterval   = time.Hour
)

// Schedule controls the pacing of collection: how targets are batched, how
// many calls run in parallel, the pause between batches and the period
// between full passes.
type Schedule struct {
	BatchSize  int
	MaxWorkers int
	BatchDelay time.Duration
	Interval   time.Duration
}

func (s Schedule) withDefaults() Schedule {
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if s.MaxWorkers <= 0 {
		s.MaxWorkers = DefaultMaxWorkers
	}
	if s.BatchDelay == 0 {
		s.BatchDelay = DefaultBatchDelay
	} else if s.BatchDelay < 0 {
		// A negative delay disables pacing between batches.
		s.BatchDelay = 0
	}
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}
	return s
}

// Partition splits targets into contiguous batches of at most size,
// preserving input order. Concatenating the batches reconstructs targets
// exactly. A non-positive size yields a single batch.
func Partition(targets []string, size int) [][]string {
	if len(targets) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(targets)
	}

	var batches [][]string
	for start := 0; start < len(targets); start += size {
		end := start + size
		if end > len(targets) {
			end = len(targets)
		}
		batches = append(batches, targets[start:end:end])
	}
	return batches
}

// fetchBatch polls every target of one batch with at most MaxWorkers
// concurrent calls. results[i] always belongs to targets[i] regardless of
// worker completion order. A per-target failure lands in its result slot;
// nothing aborts the batch.
func (c *Collector) fetchBatch(ctx context.Context, targets []string) []TargetResult {
	results := make([]TargetResult, len(targets))

	workers := c.schedule.MaxWorkers
	if workers > len(targets) {
		workers = len(targets)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				target := targets[i]
				raw, err := c.source.StorageGroupRDF(ctx, c.symmetrixID, target)
				results[i] = TargetResult{
					StorageGroup: target,
					Raw:          raw,
					Err:          err,
				}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(targets); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Targets never dispatched still get a result slot.
	for ; next < len(targets); next++ {
		results[next] = TargetResult{
			StorageGroup: targets[next],
			Err:          ctx.Err(),
		}
	}

	return results
}

// nextSleep keeps passes roughly periodic: the interval is reduced by the
// time the pass took, floored at zero so an overrun triggers a back-to-back
// pass instead of a skipped one.
func nextSleep(interval, elapsed time.Duration) time.Duration {
	sleep := interval - elapsed
	if sleep < 0 {
		return 0
	}
	return sleep
}

// Watch fetches the storage group inventory once and then collects on the
// schedule interval until ctx is done. A failed pass is logged and retried
// on the next tick; only an inventory failure is fatal.
func (c *Collector) Watch(ctx context.Context) error {
	targets, err := c.Inventory(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("inventory loaded",
		zap.String("symmetrix_id", c.symmetrixID),
		zap.Int("storage_groups", len(targets)),
	)

	for {
		start := time.Now()

		run, err := c.Collect(ctx, targets)
		switch {
		case err == nil:
			c.logger.Info("collection pass complete",
				zap.String("run_id", run.ID),
				zap.Int("records", len(run.Records())),
				zap.Int("failures", run.NumFailures()),
			)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			c.logger.Error("collection pass failed", zap.Error(err))
		}

		sleep := nextSleep(c.schedule.Interval, time.Since(start))
		c.logger.Info("next collection scheduled",
			zap.Duration("sleep", sleep),
		)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
