package pricewatch

import "context"

// RawExtraction holds field values pulled from a product page before
// normalization. It is pipeline-internal and never persisted. Title and
// Price are required; every other field degrades to its zero value when the
// page does not expose it.
type RawExtraction struct {
	Title       string   `json:"title"`
	Price       Price    `json:"price"`
	Rating      *float64 `json:"rating"`
	RatingCount int      `json:"ratingCount"`
	ImageURL    string   `json:"imageUrl"`
	Category    string   `json:"category"`
	PlatformID  string   `json:"platformId"`
}

// Extractor extracts raw product fields from platform HTML.
type Extractor interface {
	// Extract parses product fields from the page at url. Values from an
	// embedded structured-data Product block win over selector results;
	// ordered selector fallbacks cover layout variants.
	// Returns EEXTRACTION if a required field cannot be extracted.
	Extract(ctx context.Context, html string, url string) (*RawExtraction, error)
}

// ExtractorRegistry resolves the extractor paired with a platform.
type ExtractorRegistry interface {
	// ExtractorFor returns the extractor for platform.
	// Returns EUNSUPPORTED when the platform has no extractor.
	ExtractorFor(platform Platform) (Extractor, error)
}
