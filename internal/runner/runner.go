package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Runner owns the worker pool and the aggregation loop for one run. The
// producer fills a bounded jobs channel, so a huge tree never piles up in
// memory: when the workers are saturated the producer blocks. Results are
// drained by a single goroutine (the caller of Run), which is the only writer
// of the Outcome.
type Runner struct {
	// Workers is the number of concurrent hash slots. Never exceeded.
	Workers int
	// QueueSize caps the backlog between producer and workers. Zero means
	// Workers * 4.
	QueueSize int
	// ContinueOnError keeps the run going past failures; otherwise the
	// first failed Result aborts: no new jobs are issued, in-flight files
	// are allowed to finish.
	ContinueOnError bool
	Executor        Executor
	// OnResult, if set, observes every Result from the aggregation
	// goroutine, in completion order.
	OnResult func(Result)
}

func (r *Runner) Run(ctx context.Context, produce Producer) (*Outcome, error) {
	if r.Executor == nil {
		return nil, errors.New("runner: no executor")
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	queue := r.QueueSize
	if queue <= 0 {
		queue = workers * 4
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Job, queue)
	results := make(chan Result, workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		return produce(gctx, jobs)
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				// Checked first so an abort stops job issue even
				// while the backlog still has entries.
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				select {
				case <-gctx.Done():
					return nil
				case job, ok := <-jobs:
					if !ok {
						return nil
					}
					res := r.Executor.Execute(gctx, job)
					select {
					case results <- res:
					case <-gctx.Done():
						return nil
					}
				}
			}
		})
	}

	workErr := make(chan error, 1)
	go func() {
		workErr <- g.Wait()
		close(results)
	}()

	out := &Outcome{}
	for res := range results {
		out.Total++
		if res.Failed() {
			out.Failed = append(out.Failed, res)
		} else {
			out.OK++
		}
		if r.OnResult != nil {
			r.OnResult(res)
		}
		if res.Failed() && !r.ContinueOnError && !out.Aborted {
			out.Aborted = true
			slog.Warn("aborting on first failure",
				"path", res.Job.Path, "status", res.Status.String())
			cancel()
		}
	}

	if err := <-workErr; err != nil && !errors.Is(err, context.Canceled) {
		return out, fmt.Errorf("run failed: %w", err)
	}
	if !out.Aborted && ctx.Err() != nil {
		// outside cancellation (signal): report it, the outcome is partial
		out.Aborted = true
	}
	return out, nil
}
