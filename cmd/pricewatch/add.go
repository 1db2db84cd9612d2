package main

import (
	"fmt"

	"github.com/dbalogun/pricewatch"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	platform, err := pricewatch.DetectPlatform(c.URL)
	if err != nil {
		if pricewatch.ErrorCode(err) == pricewatch.EUNSUPPORTED {
			fmt.Fprintf(deps.Stderr, "error: %s. Supported platforms: amazon, jumia.\n", pricewatch.ErrorMessage(err))
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		}
		return err
	}

	entry := &pricewatch.CatalogEntry{
		URL:      c.URL,
		Platform: platform,
		IsActive: true,
	}

	if err := deps.Catalog.CreateEntry(deps.Ctx, entry); err != nil {
		if pricewatch.ErrorCode(err) == pricewatch.ECONFLICT {
			fmt.Fprintf(deps.Stderr, "error: already watching %s\n", c.URL)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Watching %s product %s (%s)\n", platform, c.URL, entry.ID)
	return nil
}
