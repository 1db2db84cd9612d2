package mock

import (
	"context"
	"time"

	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of pricewatch.CatalogService.
type CatalogService struct {
	CreateEntryFn             func(ctx context.Context, entry *pricewatch.CatalogEntry) error
	FindEntryByIDFn           func(ctx context.Context, id string) (*pricewatch.CatalogEntry, error)
	FindEntriesFn             func(ctx context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error)
	UpdateEntryFn             func(ctx context.Context, id string, upd pricewatch.CatalogEntryUpdate) (*pricewatch.CatalogEntry, error)
	DeleteEntryFn             func(ctx context.Context, id string) error
	FindProductsForScrapingFn func(ctx context.Context, limit int, maxAge time.Duration) ([]*pricewatch.CatalogEntry, error)
	SaveProductFn             func(ctx context.Context, product *pricewatch.NormalizedProduct) error
	FindProductByIDFn         func(ctx context.Context, id string) (*pricewatch.NormalizedProduct, error)
}

func (s *CatalogService) CreateEntry(ctx context.Context, entry *pricewatch.CatalogEntry) error {
	return s.CreateEntryFn(ctx, entry)
}

func (s *CatalogService) FindEntryByID(ctx context.Context, id string) (*pricewatch.CatalogEntry, error) {
	return s.FindEntryByIDFn(ctx, id)
}

func (s *CatalogService) FindEntries(ctx context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
	return s.FindEntriesFn(ctx, filter)
}

func (s *CatalogService) UpdateEntry(ctx context.Context, id string, upd pricewatch.CatalogEntryUpdate) (*pricewatch.CatalogEntry, error) {
	return s.UpdateEntryFn(ctx, id, upd)
}

func (s *CatalogService) DeleteEntry(ctx context.Context, id string) error {
	return s.DeleteEntryFn(ctx, id)
}

func (s *CatalogService) FindProductsForScraping(ctx context.Context, limit int, maxAge time.Duration) ([]*pricewatch.CatalogEntry, error) {
	return s.FindProductsForScrapingFn(ctx, limit, maxAge)
}

func (s *CatalogService) SaveProduct(ctx context.Context, product *pricewatch.NormalizedProduct) error {
	return s.SaveProductFn(ctx, product)
}

func (s *CatalogService) FindProductByID(ctx context.Context, id string) (*pricewatch.NormalizedProduct, error) {
	return s.FindProductByIDFn(ctx, id)
}
