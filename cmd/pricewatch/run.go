package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pwcron "github.com/dbalogun/pricewatch/cron"
	"github.com/dbalogun/pricewatch/scrape"
)

// Run executes the run command. It schedules one batch immediately, then
// keeps scheduling on the configured cron expression until interrupted.
func (c *RunCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := &scrape.Scheduler{Catalog: deps.Catalog}

	enqueued, err := scheduler.ScheduleBatch(ctx, deps.Queue, c.Size, c.MaxAge)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Enqueued %d tasks\n", enqueued)

	runner := pwcron.NewRunner(scheduler, deps.Queue,
		pwcron.WithSchedule(c.Schedule),
		pwcron.WithBatchSize(c.Size),
		pwcron.WithMaxAge(c.MaxAge),
		pwcron.WithLogger(deps.Logger),
	)
	if err := runner.Start(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Scheduling batches on %q. Ctrl-C to stop.\n", c.Schedule)
	<-ctx.Done()

	runner.Stop()
	fmt.Fprintln(deps.Stdout, "Runner stopped")
	return nil
}
