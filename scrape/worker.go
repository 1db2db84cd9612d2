package scrape

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dbalogun/pricewatch"
	"golang.org/x/sync/errgroup"
)

// Worker execution defaults.
const (
	DefaultTaskTimeout   = 120 * time.Second
	DefaultTaskRetryWait = 60 * time.Second
	MaxTaskAttempts      = 3
)

// Worker consumes scrape tasks from a queue and runs the pipeline for
// each one, persisting successful results. Failed tasks whose cause is
// retryable are re-enqueued with a fixed delay until their attempt
// budget runs out.
type Worker struct {
	Queue    pricewatch.TaskQueue
	Scraper  *Scraper
	Products pricewatch.ProductWriter
	Logger   *slog.Logger

	Concurrency int
	TaskTimeout time.Duration
	RetryWait   time.Duration

	// OnTaskDone, if set, observes every finished task: err is nil on
	// success, requeued reports whether a retry was scheduled.
	OnTaskDone func(task *pricewatch.ScrapeTask, err error, requeued bool)
}

// Run processes tasks until ctx is canceled. It blocks; callers that
// want a background worker run it in a goroutine.
func (w *Worker) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = discardLogger()
	}

	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	g, gctx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			for {
				task, err := w.Queue.Dequeue(gctx)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					logger.Error("dequeue failed", "err", err)
					select {
					case <-gctx.Done():
						return nil
					case <-time.After(time.Second):
					}
					continue
				}
				w.process(gctx, g, task, logger)
			}
		})
	}

	return g.Wait()
}

// process runs one task under the task timeout and decides its fate:
// save on success, re-enqueue on a retryable failure with budget left,
// drop otherwise.
func (w *Worker) process(ctx context.Context, g *errgroup.Group, task *pricewatch.ScrapeTask, logger *slog.Logger) {
	timeout := w.TaskTimeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	begin := time.Now()
	result := w.Scraper.ScrapeOne(taskCtx, task.URL)

	err := result.Err
	if err == nil {
		err = w.Products.SaveProduct(taskCtx, result.Product)
		if err == nil {
			logger.Info("task completed",
				"task", task.ID,
				"url", task.URL,
				"product", result.Product.ID,
				"duration", time.Since(begin),
			)
			if w.OnTaskDone != nil {
				w.OnTaskDone(task, nil, false)
			}
			return
		}
	}

	timedOut := errors.Is(taskCtx.Err(), context.DeadlineExceeded)
	switch {
	case timedOut:
		logger.Error("task timed out",
			"task", task.ID,
			"url", task.URL,
			"timeout", timeout,
			"attempt", task.AttemptCount,
		)
	case pricewatch.ErrorCode(err) == pricewatch.EBLOCKED:
		logger.Warn("task blocked by site",
			"task", task.ID,
			"url", task.URL,
			"attempt", task.AttemptCount,
			"err", err,
		)
	default:
		logger.Error("task failed",
			"task", task.ID,
			"url", task.URL,
			"attempt", task.AttemptCount,
			"err", err,
		)
	}

	retryable := timedOut || pricewatch.Retryable(err)
	if !retryable || task.AttemptCount+1 >= MaxTaskAttempts {
		if w.OnTaskDone != nil {
			w.OnTaskDone(task, err, false)
		}
		return
	}

	if w.OnTaskDone != nil {
		w.OnTaskDone(task, err, true)
	}

	retry := *task
	retry.AttemptCount++

	wait := w.RetryWait
	if wait <= 0 {
		wait = DefaultTaskRetryWait
	}

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
		if err := w.Queue.Enqueue(ctx, &retry); err != nil && ctx.Err() == nil {
			logger.Error("re-enqueue failed", "task", retry.ID, "err", err)
		}
		return nil
	})
}
