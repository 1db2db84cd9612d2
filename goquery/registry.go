package goquery

import "github.com/dbalogun/pricewatch"

var _ pricewatch.ExtractorRegistry = (*Registry)(nil)

// Registry resolves platform extractors. Dispatch is a closed switch over
// the platform enum, built once at startup, so a platform without an
// extractor fails loudly here instead of missing silently at runtime.
type Registry struct {
	amazon *AmazonExtractor
	jumia  *JumiaExtractor
}

// NewRegistry creates a Registry with one extractor per platform.
func NewRegistry() *Registry {
	return &Registry{
		amazon: NewAmazonExtractor(),
		jumia:  NewJumiaExtractor(),
	}
}

// ExtractorFor returns the extractor for platform.
// Returns EUNSUPPORTED when the platform has no extractor.
func (r *Registry) ExtractorFor(platform pricewatch.Platform) (pricewatch.Extractor, error) {
	switch platform {
	case pricewatch.Amazon:
		return r.amazon, nil
	case pricewatch.Jumia:
		return r.jumia, nil
	default:
		return nil, pricewatch.Errorf(pricewatch.EUNSUPPORTED, "no extractor for platform %q", platform)
	}
}
