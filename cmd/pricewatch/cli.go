package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/prometheus"
	"github.com/dbalogun/pricewatch/scrape"
	"github.com/dbalogun/pricewatch/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	DB      *sqlite.DB
	Catalog pricewatch.CatalogService
	Proxies pricewatch.ProxySource
	Queue   pricewatch.TaskQueue
	Scraper *scrape.Scraper
	Metrics *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB        string  `help:"SQLite database path (defaults to ~/.pricewatch/pricewatch.db)." env:"PRICEWATCH_DB"`
	Redis     string  `help:"Redis address for the task queue." env:"PRICEWATCH_REDIS" default:"localhost:6379"`
	ProxyPool string  `help:"Proxy pool service URL." env:"PRICEWATCH_PROXY_POOL"`
	Browser   bool    `help:"Fetch with a headless browser instead of plain HTTP." env:"PRICEWATCH_BROWSER"`
	RPS       float64 `help:"Max requests per second per host." env:"PRICEWATCH_RPS" default:"1"`
	Verbose   bool    `short:"v" help:"Log debug detail."`

	Add    AddCmd    `cmd:"" help:"Watch a product URL"`
	List   ListCmd   `cmd:"" help:"List watched catalog entries"`
	Delete DeleteCmd `cmd:"" help:"Delete a catalog entry and its saved products"`
	Status StatusCmd `cmd:"" help:"Show catalog, queue, and proxy pool status"`
	Scrape ScrapeCmd `cmd:"" help:"Scrape product URLs synchronously"`
	Batch  BatchCmd  `cmd:"" help:"Enqueue a rescrape batch of due entries"`
	Work   WorkCmd   `cmd:"" help:"Consume scrape tasks from the queue"`
	Run    RunCmd    `cmd:"" help:"Schedule rescrape batches periodically"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	URL string `arg:"" help:"Product page URL to watch"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Platform string `help:"Filter by platform (amazon or jumia)"`
	All      bool   `help:"Include deactivated entries"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Catalog entry ID"`
	Force bool   `help:"Confirm deletion"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URLs []string `arg:"" help:"Product page URLs"`
	JSON bool     `help:"Print normalized products as JSON"`
	Save bool     `help:"Persist scraped products to the catalog"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Size   int           `default:"100" help:"Maximum entries per batch" env:"PRICEWATCH_BATCH_SIZE"`
	MaxAge time.Duration `default:"24h" help:"Staleness threshold for selection" env:"PRICEWATCH_MAX_AGE"`
	Sync   bool          `help:"Scrape the batch in-process instead of enqueueing"`
}

// WorkCmd is the "work" subcommand.
type WorkCmd struct {
	Concurrency int           `short:"c" default:"5" help:"Concurrent task limit" env:"PRICEWATCH_CONCURRENCY"`
	TaskTimeout time.Duration `default:"120s" help:"Timeout per task"`
	RetryWait   time.Duration `default:"60s" help:"Delay before a failed task is retried"`
	Metrics     string        `help:"Prometheus listen address (e.g. :9090)" env:"PRICEWATCH_METRICS_ADDR"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Schedule string        `default:"@hourly" help:"Cron expression for batch runs" env:"PRICEWATCH_SCHEDULE"`
	Size     int           `default:"100" help:"Maximum entries per batch" env:"PRICEWATCH_BATCH_SIZE"`
	MaxAge   time.Duration `default:"24h" help:"Staleness threshold for selection" env:"PRICEWATCH_MAX_AGE"`
}
