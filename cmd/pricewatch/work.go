package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/prometheus"
	"github.com/dbalogun/pricewatch/scrape"
)

// gaugeInterval is how often the queue depth and proxy health gauges
// are refreshed.
const gaugeInterval = 15 * time.Second

// Run executes the work command. It blocks until interrupted.
func (c *WorkCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := &scrape.Worker{
		Queue:       deps.Queue,
		Scraper:     deps.Scraper,
		Products:    deps.Catalog,
		Logger:      deps.Logger,
		Concurrency: c.Concurrency,
		TaskTimeout: c.TaskTimeout,
		RetryWait:   c.RetryWait,
	}

	var metricsServer *http.Server
	if deps.Metrics != nil {
		worker.Products = prometheus.NewInstrumentedWriter(deps.Catalog, deps.Metrics)
		worker.OnTaskDone = func(task *pricewatch.ScrapeTask, err error, requeued bool) {
			switch {
			case err == nil:
				deps.Metrics.IncTask("completed")
			case requeued:
				deps.Metrics.IncTask("retried")
				deps.Metrics.IncTaskRetry()
			default:
				deps.Metrics.IncTask("failed")
			}
		}

		go pollGauges(ctx, deps)

		metricsServer = &http.Server{
			Addr:    c.Metrics,
			Handler: deps.Metrics.Handler(),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				deps.Logger.Error("metrics server failed", "err", err)
			}
		}()
		deps.Logger.Info("metrics server listening", "addr", c.Metrics)
	}

	fmt.Fprintf(deps.Stdout, "Consuming tasks with %d workers. Ctrl-C to stop.\n", c.Concurrency)

	err := worker.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	fmt.Fprintln(deps.Stdout, "Worker stopped")
	return err
}

func pollGauges(ctx context.Context, deps *Dependencies) {
	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if depth, err := deps.Queue.Len(ctx); err == nil {
				deps.Metrics.SetQueueDepth(depth)
			}
			if deps.Proxies != nil {
				deps.Metrics.SetProxyHealthy(deps.Proxies.Status(ctx).Healthy)
			}
		}
	}
}
