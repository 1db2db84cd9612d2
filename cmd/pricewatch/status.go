package main

import (
	"fmt"

	"github.com/dbalogun/pricewatch"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	entries, err := deps.Catalog.FindEntries(deps.Ctx, pricewatch.CatalogEntryFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	var active, neverScraped int
	perPlatform := map[pricewatch.Platform]int{}
	for _, entry := range entries {
		if entry.IsActive {
			active++
		}
		if entry.LastScrapedAt == nil {
			neverScraped++
		}
		perPlatform[entry.Platform]++
	}

	fmt.Fprintf(deps.Stdout, "Catalog: %d entries (%d active, %d never scraped)\n",
		len(entries), active, neverScraped)
	for _, platform := range pricewatch.Platforms() {
		if n := perPlatform[platform]; n > 0 {
			fmt.Fprintf(deps.Stdout, "  %s: %d\n", platform, n)
		}
	}

	if deps.Queue != nil {
		depth, err := deps.Queue.Len(deps.Ctx)
		if err != nil {
			fmt.Fprintf(deps.Stdout, "Queue: unavailable (%s)\n", pricewatch.ErrorMessage(err))
		} else {
			fmt.Fprintf(deps.Stdout, "Queue: %d tasks pending\n", depth)
		}
	} else {
		fmt.Fprintln(deps.Stdout, "Queue: not connected")
	}

	if deps.Proxies != nil {
		status := deps.Proxies.Status(deps.Ctx)
		fmt.Fprintf(deps.Stdout, "Proxy pool: %d/%d healthy", status.Healthy, status.Total)
		if status.Message != "" {
			fmt.Fprintf(deps.Stdout, " (%s)", status.Message)
		}
		fmt.Fprintln(deps.Stdout)
	} else {
		fmt.Fprintln(deps.Stdout, "Proxy pool: not configured")
	}

	return nil
}
