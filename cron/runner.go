// Package cron runs rescrape batch scheduling on a periodic interval.
package cron

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/scrape"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs one batch per hour.
const DefaultSchedule = "@hourly"

// DefaultBatchTimeout bounds a single periodic batch. Selection and
// enqueueing are quick; a batch that takes longer than this is stuck.
const DefaultBatchTimeout = 5 * time.Minute

// BatchScheduler selects due catalog entries and enqueues them as tasks.
// *scrape.Scheduler satisfies it.
type BatchScheduler interface {
	ScheduleBatch(ctx context.Context, queue pricewatch.TaskQueue, limit int, maxAge time.Duration) (int, error)
}

// Runner periodically schedules rescrape batches. A panicking batch is
// recovered by the cron chain rather than taking down the process.
type Runner struct {
	scheduler BatchScheduler
	queue     pricewatch.TaskQueue
	cron      *cron.Cron
	schedule  string
	limit     int
	maxAge    time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSchedule sets the cron expression for batch runs. Standard 5-field
// expressions and @every/@hourly descriptors are accepted.
// Defaults to DefaultSchedule if not specified.
func WithSchedule(spec string) RunnerOption {
	return func(r *Runner) {
		r.schedule = spec
	}
}

// WithBatchSize sets the maximum number of tasks enqueued per run.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		r.limit = n
	}
}

// WithMaxAge sets the staleness threshold entries must exceed to be
// selected.
func WithMaxAge(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.maxAge = d
	}
}

// WithBatchTimeout sets the per-run timeout.
func WithBatchTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger for batch outcomes.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner that schedules batches through scheduler into
// queue. Start must be called to begin running.
func NewRunner(scheduler BatchScheduler, queue pricewatch.TaskQueue, opts ...RunnerOption) *Runner {
	r := &Runner{
		scheduler: scheduler,
		queue:     queue,
		schedule:  DefaultSchedule,
		limit:     scrape.DefaultBatchSize,
		maxAge:    scrape.DefaultMaxAge,
		timeout:   DefaultBatchTimeout,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	return r
}

// Start registers the batch job and starts the cron loop. The first batch
// runs when the schedule first fires, not immediately.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.runBatch); err != nil {
		return pricewatch.Errorf(pricewatch.EINVALID, "invalid schedule %q: %v", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info("periodic batch runner started",
		"schedule", r.schedule,
		"limit", r.limit,
		"max_age", r.maxAge,
	)

	return nil
}

// Stop halts the schedule and waits for a batch in progress to finish.
// Stop is safe to call multiple times.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("periodic batch runner stopped")
}

func (r *Runner) runBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	begin := time.Now()
	enqueued, err := r.scheduler.ScheduleBatch(ctx, r.queue, r.limit, r.maxAge)
	if err != nil {
		r.logger.Error("periodic batch failed",
			"enqueued", enqueued,
			"duration", time.Since(begin),
			"err", err,
		)
		return
	}

	r.logger.Info("periodic batch scheduled",
		"enqueued", enqueued,
		"duration", time.Since(begin),
	)
}
