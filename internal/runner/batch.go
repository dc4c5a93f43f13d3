package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harukit/sitegrep/internal/model"
)

// RunAll crawls every configured target and returns their reports in
// target order.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only BatchSize goroutines run
// simultaneously.
//
// A failed or aborted run never stops the other targets; its outcome is
// recorded in the run's own report. The error return is reserved for
// batch-level failure, which in practice means context cancellation.
func (r *Runner) RunAll(ctx context.Context) ([]*model.CrawlReport, error) {
	targets := r.cfg.Targets

	r.logger.Debug("starting batch",
		"targets", len(targets),
		"concurrency", r.cfg.BatchSize,
	)
	start := time.Now()

	// Pre-allocated and index-addressed, so no mutex is needed: each
	// goroutine writes its own slot.
	reports := make([]*model.CrawlReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.BatchSize)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report, err := r.RunTarget(ctx, target)
			reports[i] = report

			if err != nil {
				// The outcome lives in the report; other targets continue.
				r.logger.Warn("run finished with error", "target", target, "error", err)
			}
			return nil
		})
	}

	err := g.Wait()

	r.logger.Debug("batch finished",
		"targets", len(targets),
		"elapsed", time.Since(start),
	)
	return reports, err
}
