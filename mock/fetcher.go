package mock

import (
	"context"

	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pricewatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, platform pricewatch.Platform, attempt int) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, platform pricewatch.Platform, attempt int) (string, error) {
	return f.FetchFn(ctx, url, platform, attempt)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
