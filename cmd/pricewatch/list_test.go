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

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists active entries by default", func(t *testing.T) {
		t.Parallel()

		scrapedAt := time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC)

		var receivedFilter pricewatch.CatalogEntryFilter
		catalog := &mock.CatalogService{
			FindEntriesFn: func(_ context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
				receivedFilter = filter
				return []*pricewatch.CatalogEntry{
					{
						ID:            "entry-1",
						URL:           "https://www.amazon.com/dp/B08N5WRWNW",
						Platform:      pricewatch.Amazon,
						ScrapeCount:   4,
						LastScrapedAt: &scrapedAt,
						IsActive:      true,
					},
					{
						ID:       "entry-2",
						URL:      "https://www.jumia.com.ng/generic-blender-48261.html",
						Platform: pricewatch.Jumia,
						IsActive: true,
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Catalog: catalog,
		}

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, receivedFilter.IsActive)
		assert.True(t, *receivedFilter.IsActive)
		output := stdout.String()
		assert.Contains(t, output, "https://www.amazon.com/dp/B08N5WRWNW")
		assert.Contains(t, output, "scrapes=4")
		assert.Contains(t, output, "last=2025-11-03 14:30")
		assert.Contains(t, output, "last=never")
		assert.NotContains(t, output, "[inactive]")
		assert.Empty(t, stderr.String())
	})

	t.Run("includes deactivated entries with --all", func(t *testing.T) {
		t.Parallel()

		var receivedFilter pricewatch.CatalogEntryFilter
		catalog := &mock.CatalogService{
			FindEntriesFn: func(_ context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
				receivedFilter = filter
				return []*pricewatch.CatalogEntry{
					{
						ID:       "entry-1",
						URL:      "https://www.amazon.com/dp/B08N5WRWNW",
						Platform: pricewatch.Amazon,
						IsActive: false,
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Catalog: catalog,
		}

		cmd := &main.ListCmd{All: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Nil(t, receivedFilter.IsActive)
		assert.Contains(t, stdout.String(), "[inactive]")
	})

	t.Run("filters by platform", func(t *testing.T) {
		t.Parallel()

		var receivedFilter pricewatch.CatalogEntryFilter
		catalog := &mock.CatalogService{
			FindEntriesFn: func(_ context.Context, filter pricewatch.CatalogEntryFilter) ([]*pricewatch.CatalogEntry, error) {
				receivedFilter = filter
				return nil, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Catalog: catalog,
		}

		cmd := &main.ListCmd{Platform: "jumia"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, receivedFilter.Platform)
		assert.Equal(t, pricewatch.Jumia, *receivedFilter.Platform)
	})

	t.Run("rejects unknown platforms", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.ListCmd{Platform: "ebay"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, pricewatch.EUNSUPPORTED, pricewatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), `unknown platform "ebay"`)
	})

	t.Run("shows a hint when the catalog is empty", func(t *testing.T) {
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

		cmd := &main.ListCmd{}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No entries found")
		assert.Contains(t, stdout.String(), "pricewatch add")
	})
}
