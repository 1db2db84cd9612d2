package scrape

import (
	"context"
	"sort"
	"time"

	"github.com/dbalogun/pricewatch"
	"github.com/google/uuid"
)

// Defaults for a rescrape batch.
const (
	DefaultBatchSize = 100
	DefaultMaxAge    = 24 * time.Hour
)

// Scheduler selects catalog entries due for rescraping and turns them
// into priority-ranked scrape tasks. It orders selection only; tasks may
// complete in any order.
type Scheduler struct {
	Catalog pricewatch.CatalogService
}

// SelectCandidates returns up to limit tasks for active entries that are
// due: never scraped, or last scraped longer than maxAge ago. Entries
// never scraped rank first; within a tier, entries with fewer scrapes
// rank before entries with more, oldest scrape first.
func (s *Scheduler) SelectCandidates(ctx context.Context, limit int, maxAge time.Duration) ([]*pricewatch.ScrapeTask, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	entries, err := s.Catalog.FindProductsForScraping(ctx, limit, maxAge)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-maxAge)
	due := make([]*pricewatch.CatalogEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsActive {
			continue
		}
		if scrapeTier(entry) == 1 && entry.LastScrapedAt.After(cutoff) {
			continue
		}
		due = append(due, entry)
	}

	sort.SliceStable(due, func(i, j int) bool {
		return lessPriority(due[i], due[j])
	})

	if len(due) > limit {
		due = due[:limit]
	}

	now := time.Now().UTC()
	tasks := make([]*pricewatch.ScrapeTask, len(due))
	for i, entry := range due {
		tasks[i] = &pricewatch.ScrapeTask{
			ID:         uuid.NewString(),
			EntryID:    entry.ID,
			URL:        entry.URL,
			Platform:   entry.Platform,
			EnqueuedAt: now,
		}
	}

	return tasks, nil
}

// ScheduleBatch selects candidates and enqueues them. It returns the
// number of tasks enqueued.
func (s *Scheduler) ScheduleBatch(ctx context.Context, queue pricewatch.TaskQueue, limit int, maxAge time.Duration) (int, error) {
	tasks, err := s.SelectCandidates(ctx, limit, maxAge)
	if err != nil {
		return 0, err
	}

	for i, task := range tasks {
		if err := queue.Enqueue(ctx, task); err != nil {
			return i, err
		}
	}

	return len(tasks), nil
}

// scrapeTier buckets an entry: 0 for entries never scraped, 1 for stale
// ones.
func scrapeTier(entry *pricewatch.CatalogEntry) int {
	if entry.LastScrapedAt == nil || entry.ScrapeCount == 0 {
		return 0
	}
	return 1
}

// lessPriority reports whether a should be scraped before b: lower tier
// first, then fewer scrapes, then older last-scrape, nil timestamps
// first.
func lessPriority(a, b *pricewatch.CatalogEntry) bool {
	if ta, tb := scrapeTier(a), scrapeTier(b); ta != tb {
		return ta < tb
	}
	if a.ScrapeCount != b.ScrapeCount {
		return a.ScrapeCount < b.ScrapeCount
	}
	switch {
	case a.LastScrapedAt == nil && b.LastScrapedAt == nil:
		return false
	case a.LastScrapedAt == nil:
		return true
	case b.LastScrapedAt == nil:
		return false
	default:
		return a.LastScrapedAt.Before(*b.LastScrapedAt)
	}
}
