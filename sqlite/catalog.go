package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dbalogun/pricewatch"
)

// Compile-time interface verification.
var _ pricewatch.CatalogService = (*CatalogService)(nil)

// CatalogService implements pricewatch.CatalogService using SQLite.
type CatalogService struct {
	db *DB
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *DB) *CatalogService {
	return &CatalogService{db: db}
}

// entryColumns is the column list shared by every catalog entry query.
const entryColumns = "id, url, platform, scrape_count, last_scraped_at, is_active, created_at, updated_at"

// CreateEntry registers a new catalog entry to watch.
func (s *CatalogService) CreateEntry(ctx context.Context, entry *pricewatch.CatalogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	entry.ID = uuid.New().String()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (id, url, platform, scrape_count, last_scraped_at, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.URL, string(entry.Platform), entry.ScrapeCount,
		formatNullableTime(entry.LastScrapedAt), boolToInt(entry.IsActive),
		entry.CreatedAt.Format(time.RFC3339), entry.UpdatedAt.Format(time.RFC3339))

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return pricewatch.Errorf(pricewatch.ECONFLICT, "catalog entry already exists for %s", entry.URL)
	}
	return err
}

// FindEntryByID retrieves an entry by ID.
func (s *CatalogService) FindEntryByID(ctx context.Context, id string) (*pricewatch.CatalogEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM catalog_entries
		WHERE id = ?
	`, id)

	entry, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "catalog entry not found")
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// FindEntries retrieves entries matching the filter.
func (s *CatalogService) FindEntries(ctx context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + entryColumns + " FROM catalog_entries WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Platform != nil {
		query.WriteString(" AND platform = ?")
		args = append(args, string(*filter.Platform))
	}
	if filter.IsActive != nil {
		query.WriteString(" AND is_active = ?")
		args = append(args, boolToInt(*filter.IsActive))
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*pricewatch.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateEntry updates an existing entry. Changing the URL re-resolves the
// entry's platform from the new host.
func (s *CatalogService) UpdateEntry(ctx context.Context, id string, upd pricewatch.CatalogEntryUpdate) (*pricewatch.CatalogEntry, error) {
	// First check if entry exists
	entry, err := s.FindEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if upd.URL != nil {
		platform, err := pricewatch.DetectPlatform(*upd.URL)
		if err != nil {
			return nil, err
		}
		entry.URL = *upd.URL
		entry.Platform = platform
	}
	if upd.IsActive != nil {
		entry.IsActive = *upd.IsActive
	}

	// Validate before persisting
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	entry.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE catalog_entries
		SET url = ?, platform = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, entry.URL, string(entry.Platform), boolToInt(entry.IsActive),
		entry.UpdatedAt.Format(time.RFC3339), id)

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return nil, pricewatch.Errorf(pricewatch.ECONFLICT, "catalog entry already exists for %s", entry.URL)
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteEntry permanently removes an entry and the products saved for its URL.
func (s *CatalogService) DeleteEntry(ctx context.Context, id string) error {
	entry, err := s.FindEntryByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE url = ?", entry.URL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries WHERE id = ?", id); err != nil {
		return err
	}

	return tx.Commit()
}

// FindProductsForScraping returns active entries due for rescraping: never
// scraped, or last scraped before the maxAge cutoff. Rows come back
// never-scraped first, then least-scraped and stalest, though final ranking
// is the scheduler's concern.
func (s *CatalogService) FindProductsForScraping(ctx context.Context, limit int, maxAge time.Duration) ([]*pricewatch.CatalogEntry, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)

	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + entryColumns + " FROM catalog_entries")
	query.WriteString(" WHERE is_active = 1 AND (last_scraped_at IS NULL OR last_scraped_at < ?)")
	args = append(args, cutoff)
	query.WriteString(" ORDER BY (last_scraped_at IS NULL) DESC, scrape_count ASC, last_scraped_at ASC")
	appendPagination(&query, &args, limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*pricewatch.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// scanEntry reads one catalog entry row using the given scan function, which
// works for both sql.Row and sql.Rows.
func scanEntry(scan func(dest ...any) error) (*pricewatch.CatalogEntry, error) {
	var entry pricewatch.CatalogEntry
	var platform string
	var lastScraped sql.NullString
	var active int
	var createdAt, updatedAt string

	if err := scan(&entry.ID, &entry.URL, &platform, &entry.ScrapeCount,
		&lastScraped, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	entry.Platform = pricewatch.Platform(platform)
	entry.IsActive = active != 0

	var err error
	if entry.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	if lastScraped.Valid {
		t, err := parseRFC3339(lastScraped.String, "last_scraped_at")
		if err != nil {
			return nil, err
		}
		entry.LastScrapedAt = &t
	}

	return &entry, nil
}
