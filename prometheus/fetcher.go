package prometheus

import (
	"context"
	"time"

	"github.com/dbalogun/pricewatch"
)

// Ensure InstrumentedFetcher implements pricewatch.Fetcher.
var _ pricewatch.Fetcher = (*InstrumentedFetcher)(nil)

// InstrumentedFetcher wraps a Fetcher with fetch counters and latency
// observation.
type InstrumentedFetcher struct {
	next    pricewatch.Fetcher
	metrics *Metrics
}

// NewInstrumentedFetcher creates a new InstrumentedFetcher.
func NewInstrumentedFetcher(next pricewatch.Fetcher, metrics *Metrics) *InstrumentedFetcher {
	return &InstrumentedFetcher{next: next, metrics: metrics}
}

// Fetch delegates to the wrapped fetcher, recording outcome and latency.
func (f *InstrumentedFetcher) Fetch(ctx context.Context, url string, platform pricewatch.Platform, attempt int) (string, error) {
	begin := time.Now()
	html, err := f.next.Fetch(ctx, url, platform, attempt)
	f.metrics.ObserveFetchDuration(time.Since(begin))
	f.metrics.IncFetch(platform.String(), outcomeLabel(err))
	return html, err
}

// Close delegates to the wrapped fetcher.
func (f *InstrumentedFetcher) Close() error {
	return f.next.Close()
}

// outcomeLabel maps a fetch result to its metric label.
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return pricewatch.ErrorCode(err)
}
