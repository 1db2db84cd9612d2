package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dbalogun/pricewatch"
)

// SaveProduct persists a normalized product and touches the scrape
// bookkeeping of the catalog entry watching the product's URL. Products are
// keyed by their deterministic ID, so a rescrape overwrites the previous
// snapshot. A product whose URL no entry watches is still saved; only the
// bookkeeping update is a no-op.
func (s *CatalogService) SaveProduct(ctx context.Context, product *pricewatch.NormalizedProduct) error {
	if err := product.Validate(); err != nil {
		return err
	}

	if product.ScrapedAt.IsZero() {
		product.ScrapedAt = time.Now().UTC()
	}

	var rating any
	if product.Rating != nil {
		rating = *product.Rating
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, url, title, price_amount, price_currency, category,
			platform, platform_id, image_url, rating, rating_count, completeness, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			price_amount = excluded.price_amount,
			price_currency = excluded.price_currency,
			category = excluded.category,
			platform = excluded.platform,
			platform_id = excluded.platform_id,
			image_url = excluded.image_url,
			rating = excluded.rating,
			rating_count = excluded.rating_count,
			completeness = excluded.completeness,
			scraped_at = excluded.scraped_at
	`, product.ID, product.URL, product.Title, product.Price.Amount, product.Price.Currency,
		product.Category, string(product.Platform), product.PlatformID, product.ImageURL,
		rating, product.RatingCount, product.Completeness,
		product.ScrapedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE catalog_entries
		SET scrape_count = scrape_count + 1, last_scraped_at = ?, updated_at = ?
		WHERE url = ?
	`, product.ScrapedAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339), product.URL)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// FindProductByID retrieves a saved product by its deterministic ID.
func (s *CatalogService) FindProductByID(ctx context.Context, id string) (*pricewatch.NormalizedProduct, error) {
	var product pricewatch.NormalizedProduct
	var platform string
	var rating sql.NullFloat64
	var scrapedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, price_amount, price_currency, category,
			platform, platform_id, image_url, rating, rating_count, completeness, scraped_at
		FROM products
		WHERE id = ?
	`, id).Scan(&product.ID, &product.URL, &product.Title, &product.Price.Amount,
		&product.Price.Currency, &product.Category, &platform, &product.PlatformID,
		&product.ImageURL, &rating, &product.RatingCount, &product.Completeness, &scrapedAt)

	if err == sql.ErrNoRows {
		return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "product not found")
	}
	if err != nil {
		return nil, err
	}

	product.Platform = pricewatch.Platform(platform)
	if rating.Valid {
		r := rating.Float64
		product.Rating = &r
	}
	if product.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at"); err != nil {
		return nil, err
	}

	return &product, nil
}
