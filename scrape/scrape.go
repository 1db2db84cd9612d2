// Package scrape provides product scraping orchestration.
// It coordinates platform detection, proxy-rotated fetching, extraction,
// and normalization of product pages, plus the scheduling and worker
// machinery that keeps a catalog fresh.
package scrape

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/dbalogun/pricewatch"
	"golang.org/x/sync/errgroup"
)

// Scraper orchestrates the scraping pipeline for product URLs.
type Scraper struct {
	Fetcher     pricewatch.Fetcher
	Extractors  pricewatch.ExtractorRegistry
	RateLimiter pricewatch.HostLimiter
	Concurrency int
	MaxAttempts int
	RetryWait   time.Duration
}

// ScrapeResult is the outcome of scraping a single URL. Err is nil on
// success; on failure Raw may still carry whatever extraction succeeded
// before the failing stage.
type ScrapeResult struct {
	URL     string
	Raw     *pricewatch.RawExtraction
	Product *pricewatch.NormalizedProduct
	Err     error
}

// Succeeded reports whether the scrape produced a normalized product.
func (r *ScrapeResult) Succeeded() bool {
	return r.Err == nil
}

// BatchResult aggregates the outcome of a ScrapeMany run.
type BatchResult struct {
	Total   int
	Success int
	Failed  int

	// Results is index-aligned with the input URL list.
	Results []ScrapeResult
}

// ProgressEvent reports progress during a batch scrape.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch scrape progress.
type ProgressFunc func(event ProgressEvent)

// ScrapeOne runs the full pipeline for a single product URL: detect the
// platform, validate the URL against it, fetch through the retry loop,
// extract, and map. Every stage failure is captured in the result rather
// than propagated, so batch runs stay isolated.
func (s *Scraper) ScrapeOne(ctx context.Context, rawURL string) *ScrapeResult {
	result := &ScrapeResult{URL: rawURL}

	platform, err := pricewatch.DetectPlatform(rawURL)
	if err != nil {
		result.Err = err
		return result
	}
	if err := pricewatch.ValidateURL(rawURL, platform); err != nil {
		result.Err = err
		return result
	}

	extractor, err := s.Extractors.ExtractorFor(platform)
	if err != nil {
		result.Err = err
		return result
	}

	if s.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err == nil {
			if err := s.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
				result.Err = err
				return result
			}
		}
	}

	html, err := FetchWithRetry(ctx, s.Fetcher, rawURL, platform, s.MaxAttempts, s.RetryWait)
	if err != nil {
		result.Err = err
		return result
	}

	raw, err := extractor.Extract(ctx, html, rawURL)
	if err != nil {
		result.Err = err
		return result
	}
	result.Raw = raw

	product, err := pricewatch.MapExtraction(raw, platform, rawURL)
	if err != nil {
		result.Err = err
		return result
	}
	result.Product = product

	return result
}

// ScrapeMany scrapes every URL independently; one failure never aborts
// the batch. Results preserve input order by index. The progress
// callback, if provided, receives events as scraping proceeds.
func (s *Scraper) ScrapeMany(ctx context.Context, urls []string, progress ProgressFunc) *BatchResult {
	batch := &BatchResult{
		Total:   len(urls),
		Results: make([]ScrapeResult, len(urls)),
	}
	if len(urls) == 0 {
		return batch
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	type indexed struct {
		position int
		result   *ScrapeResult
	}
	resultCh := make(chan indexed, len(urls))

	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: batch.Total})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				resultCh <- indexed{position: i, result: s.ScrapeOne(gctx, u)}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	for item := range resultCh {
		completed.Add(1)
		batch.Results[item.position] = *item.result

		if item.result.Err != nil {
			batch.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     batch.Total,
					URL:       item.result.URL,
					Error:     item.result.Err,
				})
			}
		} else {
			batch.Success++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressCompleted,
					Completed: int(completed.Load()),
					Total:     batch.Total,
					URL:       item.result.URL,
				})
			}
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: batch.Total, Total: batch.Total})
	}

	return batch
}

// discardLogger returns a logger that drops everything, for components
// constructed without one.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
