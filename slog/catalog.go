package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/dbalogun/pricewatch"
)

// Ensure LoggingCatalogService implements pricewatch.CatalogService.
var _ pricewatch.CatalogService = (*LoggingCatalogService)(nil)

// LoggingCatalogService wraps a CatalogService with logging on writes and
// candidate selection. Point reads delegate without logging.
type LoggingCatalogService struct {
	next   pricewatch.CatalogService
	logger *slog.Logger
}

// NewLoggingCatalogService creates a new LoggingCatalogService.
func NewLoggingCatalogService(next pricewatch.CatalogService, logger *slog.Logger) *LoggingCatalogService {
	return &LoggingCatalogService{next: next, logger: logger}
}

// CreateEntry delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) CreateEntry(ctx context.Context, entry *pricewatch.CatalogEntry) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create catalog entry",
			"url", entry.URL,
			"platform", entry.Platform,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateEntry(ctx, entry)
}

// FindEntryByID delegates to the wrapped service.
func (s *LoggingCatalogService) FindEntryByID(ctx context.Context, id string) (*pricewatch.CatalogEntry, error) {
	return s.next.FindEntryByID(ctx, id)
}

// FindEntries delegates to the wrapped service.
func (s *LoggingCatalogService) FindEntries(ctx context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
	return s.next.FindEntries(ctx, filter)
}

// UpdateEntry delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) UpdateEntry(ctx context.Context, id string, upd pricewatch.CatalogEntryUpdate) (entry *pricewatch.CatalogEntry, err error) {
	defer func(begin time.Time) {
		s.logger.Info("update catalog entry",
			"entry", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateEntry(ctx, id, upd)
}

// DeleteEntry delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) DeleteEntry(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete catalog entry",
			"entry", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteEntry(ctx, id)
}

// FindProductsForScraping delegates to the wrapped service and logs how many
// candidates came back.
func (s *LoggingCatalogService) FindProductsForScraping(ctx context.Context, limit int, maxAge time.Duration) (entries []*pricewatch.CatalogEntry, err error) {
	defer func(begin time.Time) {
		s.logger.Info("rescrape candidate selection",
			"limit", limit,
			"max_age", maxAge,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindProductsForScraping(ctx, limit, maxAge)
}

// SaveProduct delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) SaveProduct(ctx context.Context, product *pricewatch.NormalizedProduct) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save product",
			"product", product.ID,
			"price", product.Price.Amount,
			"currency", product.Price.Currency,
			"completeness", product.Completeness,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveProduct(ctx, product)
}

// FindProductByID delegates to the wrapped service.
func (s *LoggingCatalogService) FindProductByID(ctx context.Context, id string) (*pricewatch.NormalizedProduct, error) {
	return s.next.FindProductByID(ctx, id)
}
