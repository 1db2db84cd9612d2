package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dbalogun/pricewatch"
	main "github.com/dbalogun/pricewatch/cmd/pricewatch"
	"github.com/dbalogun/pricewatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("summarizes catalog, queue, and proxy pool", func(t *testing.T) {
		t.Parallel()

		scrapedAt := time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC)

		catalog := &mock.CatalogService{
			FindEntriesFn: func(_ context.Context, _ pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
				return []*pricewatch.CatalogEntry{
					{ID: "e1", Platform: pricewatch.Amazon, IsActive: true, LastScrapedAt: &scrapedAt},
					{ID: "e2", Platform: pricewatch.Amazon, IsActive: false},
					{ID: "e3", Platform: pricewatch.Jumia, IsActive: true},
				}, nil
			},
		}

		queue := &mock.TaskQueue{
			LenFn: func(_ context.Context) (int, error) { return 7, nil },
		}

		proxies := &mock.ProxySource{
			StatusFn: func(_ context.Context) pricewatch.PoolStatus {
				return pricewatch.PoolStatus{Total: 5, Healthy: 4}
			},
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Catalog: catalog,
			Queue:   queue,
			Proxies: proxies,
		}

		cmd := &main.StatusCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Catalog: 3 entries (2 active, 2 never scraped)")
		assert.Contains(t, output, "amazon: 2")
		assert.Contains(t, output, "jumia: 1")
		assert.Contains(t, output, "Queue: 7 tasks pending")
		assert.Contains(t, output, "Proxy pool: 4/5 healthy")
	})

	t.Run("degrades without a queue or proxy pool", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FindEntriesFn: func(_ context.Context, _ pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Catalog: catalog,
		}

		cmd := &main.StatusCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Catalog: 0 entries")
		assert.Contains(t, output, "Queue: not connected")
		assert.Contains(t, output, "Proxy pool: not configured")
	})

	t.Run("reports an unreachable queue", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			FindEntriesFn: func(_ context.Context, _ pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
				return nil, nil
			},
		}

		queue := &mock.TaskQueue{
			LenFn: func(_ context.Context) (int, error) {
				return 0, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "queue length: connection refused")
			},
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Catalog: catalog,
			Queue:   queue,
		}

		cmd := &main.StatusCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Queue: unavailable")
	})
}
