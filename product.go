package pricewatch

import (
	"context"
	"time"
)

// Title length bounds for a normalized product.
const (
	MinTitleLength = 3
	MaxTitleLength = 500
)

// NormalizedProduct is the canonical record produced by mapping a raw
// extraction. Ownership passes to the repository on save; the pipeline
// never mutates a product afterward.
type NormalizedProduct struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Price        Price     `json:"price"`
	Category     string    `json:"category"`
	Platform     Platform  `json:"platform"`
	PlatformID   string    `json:"platformId"`
	ImageURL     string    `json:"imageUrl"`
	Rating       *float64  `json:"rating"`
	RatingCount  int       `json:"ratingCount"`
	Completeness float64   `json:"completeness"`
	ScrapedAt    time.Time `json:"scrapedAt"`
}

// Validate returns an error if the product contains invalid fields.
func (p *NormalizedProduct) Validate() error {
	if p.ID == "" {
		return Errorf(EINVALID, "product ID required")
	}
	if n := len([]rune(p.Title)); n < MinTitleLength || n > MaxTitleLength {
		return Errorf(EINVALID, "product title must be %d-%d characters", MinTitleLength, MaxTitleLength)
	}
	if !p.Platform.Valid() {
		return Errorf(EUNSUPPORTED, "unknown platform %q", p.Platform)
	}
	if err := p.Price.Validate(); err != nil {
		return err
	}
	if min, max := p.Platform.PriceBounds(); p.Price.Amount < min || p.Price.Amount > max {
		return Errorf(EINVALID, "price %.2f outside %s bounds [%v, %v]", p.Price.Amount, p.Platform, min, max)
	}
	return nil
}

// CatalogEntry is a watched product URL with its scrape bookkeeping. A nil
// LastScrapedAt marks an entry that has never been scraped.
type CatalogEntry struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Platform      Platform   `json:"platform"`
	ScrapeCount   int        `json:"scrapeCount"`
	LastScrapedAt *time.Time `json:"lastScrapedAt"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *CatalogEntry) Validate() error {
	if e.URL == "" {
		return Errorf(EINVALID, "catalog entry URL required")
	}
	return ValidateURL(e.URL, e.Platform)
}

// ProductWriter persists normalized products.
type ProductWriter interface {
	SaveProduct(ctx context.Context, product *NormalizedProduct) error
}

// CatalogService represents a service for managing watched catalog entries
// and their scraped products.
type CatalogService interface {
	// CreateEntry registers a new catalog entry to watch.
	CreateEntry(ctx context.Context, entry *CatalogEntry) error

	// FindEntryByID retrieves an entry by ID.
	// Returns ENOTFOUND if entry does not exist.
	FindEntryByID(ctx context.Context, id string) (*CatalogEntry, error)

	// FindEntries retrieves entries matching the filter.
	FindEntries(ctx context.Context, filter CatalogEntryFilter) ([]*CatalogEntry, error)

	// UpdateEntry updates an existing entry.
	// Returns ENOTFOUND if entry does not exist.
	UpdateEntry(ctx context.Context, id string, upd CatalogEntryUpdate) (*CatalogEntry, error)

	// DeleteEntry permanently removes an entry and its saved products.
	// Returns ENOTFOUND if entry does not exist.
	DeleteEntry(ctx context.Context, id string) error

	// FindProductsForScraping returns active entries due for rescraping:
	// never scraped, or last scraped earlier than maxAge ago. At most
	// limit entries are returned. Storage order is advisory; ranking is
	// the scheduler's concern.
	FindProductsForScraping(ctx context.Context, limit int, maxAge time.Duration) ([]*CatalogEntry, error)

	// SaveProduct persists a normalized product and updates the scrape
	// bookkeeping of the catalog entry watching the product's URL.
	SaveProduct(ctx context.Context, product *NormalizedProduct) error

	// FindProductByID retrieves a saved product by its deterministic ID.
	// Returns ENOTFOUND if product does not exist.
	FindProductByID(ctx context.Context, id string) (*NormalizedProduct, error)
}

// CatalogEntryFilter represents a filter for FindEntries.
type CatalogEntryFilter struct {
	ID       *string   `json:"id"`
	URL      *string   `json:"url"`
	Platform *Platform `json:"platform"`
	IsActive *bool     `json:"isActive"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CatalogEntryUpdate represents fields that can be updated on an entry.
type CatalogEntryUpdate struct {
	URL      *string `json:"url"`
	IsActive *bool   `json:"isActive"`
}
