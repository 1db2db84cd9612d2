package main

import (
	"fmt"

	"github.com/dbalogun/pricewatch"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return pricewatch.Errorf(pricewatch.EINVALID, "use --force to confirm deletion")
	}

	entry, err := deps.Catalog.FindEntryByID(deps.Ctx, c.ID)
	if err != nil {
		if pricewatch.ErrorCode(err) == pricewatch.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: entry %q not found. Use 'pricewatch list' to see watched entries.\n", c.ID)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		}
		return err
	}

	if err := deps.Catalog.DeleteEntry(deps.Ctx, entry.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s and its saved products\n", entry.URL)
	return nil
}
