package mock

import (
	"context"

	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pricewatch.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, html string, url string) (*pricewatch.RawExtraction, error)
}

func (e *Extractor) Extract(ctx context.Context, html string, url string) (*pricewatch.RawExtraction, error) {
	return e.ExtractFn(ctx, html, url)
}

var _ pricewatch.ExtractorRegistry = (*ExtractorRegistry)(nil)

// ExtractorRegistry is a mock implementation of pricewatch.ExtractorRegistry.
type ExtractorRegistry struct {
	ExtractorForFn func(platform pricewatch.Platform) (pricewatch.Extractor, error)
}

func (r *ExtractorRegistry) ExtractorFor(platform pricewatch.Platform) (pricewatch.Extractor, error) {
	return r.ExtractorForFn(platform)
}
