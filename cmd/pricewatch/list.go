package main

import (
	"fmt"

	"github.com/dbalogun/pricewatch"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := pricewatch.CatalogEntryFilter{}
	if !c.All {
		active := true
		filter.IsActive = &active
	}
	if c.Platform != "" {
		platform := pricewatch.Platform(c.Platform)
		if !platform.Valid() {
			fmt.Fprintf(deps.Stderr, "error: unknown platform %q. Supported platforms: amazon, jumia.\n", c.Platform)
			return pricewatch.Errorf(pricewatch.EUNSUPPORTED, "unknown platform %q", c.Platform)
		}
		filter.Platform = &platform
	}

	entries, err := deps.Catalog.FindEntries(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No entries found. Use 'pricewatch add' to watch a product.")
		return nil
	}

	for _, entry := range entries {
		lastScraped := "never"
		if entry.LastScrapedAt != nil {
			lastScraped = entry.LastScrapedAt.Format("2006-01-02 15:04")
		}
		state := ""
		if !entry.IsActive {
			state = "  [inactive]"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  scrapes=%d  last=%s  %s%s\n",
			entry.ID, entry.Platform, entry.ScrapeCount, lastScraped, entry.URL, state)
	}

	return nil
}
