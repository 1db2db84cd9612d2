package main

import (
	"encoding/json"
	"fmt"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/scrape"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	progress := func(event scrape.ProgressEvent) {
		if event.Type == scrape.ProgressFailed {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.URL, pricewatch.ErrorMessage(event.Error))
		}
	}

	batch := deps.Scraper.ScrapeMany(deps.Ctx, c.URLs, progress)

	saved := 0
	if c.Save {
		for i := range batch.Results {
			result := &batch.Results[i]
			if !result.Succeeded() {
				continue
			}
			if err := deps.Catalog.SaveProduct(deps.Ctx, result.Product); err != nil {
				fmt.Fprintf(deps.Stderr, "  save %s: %s\n", result.URL, pricewatch.ErrorMessage(err))
				continue
			}
			saved++
		}
	}

	if c.JSON {
		products := make([]*pricewatch.NormalizedProduct, 0, batch.Success)
		for i := range batch.Results {
			if batch.Results[i].Succeeded() {
				products = append(products, batch.Results[i].Product)
			}
		}
		out, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, string(out))
	} else {
		for i := range batch.Results {
			result := &batch.Results[i]
			if !result.Succeeded() {
				continue
			}
			product := result.Product
			fmt.Fprintf(deps.Stdout, "%s  %s %.2f  %s\n",
				product.ID, product.Price.Currency, product.Price.Amount, product.Title)
		}
		fmt.Fprintf(deps.Stdout, "Scraped %d/%d pages", batch.Success, batch.Total)
		if c.Save {
			fmt.Fprintf(deps.Stdout, ", saved %d", saved)
		}
		fmt.Fprintln(deps.Stdout)
	}

	if batch.Success == 0 && batch.Total > 0 {
		return pricewatch.Errorf(pricewatch.EINTERNAL, "all %d scrapes failed", batch.Total)
	}
	return nil
}
