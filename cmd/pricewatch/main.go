package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/goquery"
	pwhttp "github.com/dbalogun/pricewatch/http"
	"github.com/dbalogun/pricewatch/prometheus"
	pwredis "github.com/dbalogun/pricewatch/redis"
	"github.com/dbalogun/pricewatch/rod"
	"github.com/dbalogun/pricewatch/scrape"
	pwslog "github.com/dbalogun/pricewatch/slog"
	"github.com/dbalogun/pricewatch/sqlite"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Redis connection backing the task queue, nil for commands that
	// never touch the queue.
	RedisClient *goredis.Client

	// Catalog service for end-to-end testing.
	Catalog pricewatch.CatalogService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.RedisClient != nil {
		_ = m.RedisClient.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pricewatch"),
		kong.Description("Watch e-commerce product pages and keep their extracted data fresh."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pricewatch --help' to see available commands")
	}
	if first := args[0]; first == "help" || first == "--help" || first == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd, _, _ := strings.Cut(kongCtx.Command(), " ")

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open database
	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PRICEWATCH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.Catalog = pwslog.NewLoggingCatalogService(sqlite.NewCatalogService(m.DB), deps.Logger)
	deps.DB = m.DB
	deps.Catalog = m.Catalog

	if cli.ProxyPool != "" {
		deps.Proxies = pwhttp.NewProxyPool(cli.ProxyPool)
	}

	// Wire the task queue for commands that touch it. Status degrades to
	// "unavailable" without a reachable Redis; the rest refuse to run.
	needsQueue := cmd == "work" || cmd == "run" || (cmd == "batch" && !cli.Batch.Sync)
	if needsQueue || cmd == "status" {
		client, err := pwredis.NewClient(pwredis.Config{Address: cli.Redis})
		if err != nil {
			if needsQueue {
				fmt.Fprintf(stderr, "Hint: Set PRICEWATCH_REDIS or start a Redis server\n")
				return fmt.Errorf("failed to connect to redis at %q: %w", cli.Redis, err)
			}
			deps.Logger.Debug("redis unreachable", "address", cli.Redis, "err", err)
		} else {
			m.RedisClient = client
			deps.Queue = pwredis.NewQueue(client)
		}
	}

	// Commands that scrape need the full fetch pipeline.
	needsScraper := cmd == "scrape" || cmd == "work" || (cmd == "batch" && cli.Batch.Sync)
	if needsScraper {
		var fetcher pricewatch.Fetcher
		if cli.Browser {
			var managerOpts []rod.ManagerOption
			if deps.Proxies != nil {
				if proxy := deps.Proxies.Next(ctx); proxy != nil {
					managerOpts = append(managerOpts, rod.WithProxy(proxy.Addr()))
				} else {
					deps.Logger.Warn("browser launching without proxy")
				}
			}
			browserFetcher, err := rod.NewFetcher(rod.WithManagerOptions(managerOpts...))
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = browserFetcher
		} else {
			httpOpts := []pwhttp.Option{pwhttp.WithLogger(deps.Logger)}
			if deps.Proxies != nil {
				httpOpts = append(httpOpts, pwhttp.WithProxySource(deps.Proxies))
			}
			fetcher = pwhttp.NewFetcher(httpOpts...)
		}
		fetcher = pwslog.NewLoggingFetcher(fetcher, deps.Logger)

		if cmd == "work" && cli.Work.Metrics != "" {
			deps.Metrics = prometheus.NewMetrics()
			fetcher = prometheus.NewInstrumentedFetcher(fetcher, deps.Metrics)
		}
		defer fetcher.Close()

		deps.Scraper = &scrape.Scraper{
			Fetcher:     fetcher,
			Extractors:  goquery.NewRegistry(),
			RateLimiter: scrape.NewHostLimiter(cli.RPS),
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pricewatch.db"
	}
	dir := filepath.Join(home, ".pricewatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricewatch.db")
}
