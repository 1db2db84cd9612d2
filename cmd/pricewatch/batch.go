package main

import (
	"fmt"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/scrape"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	scheduler := &scrape.Scheduler{Catalog: deps.Catalog}

	if !c.Sync {
		enqueued, err := scheduler.ScheduleBatch(deps.Ctx, deps.Queue, c.Size, c.MaxAge)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
			return err
		}
		if enqueued == 0 {
			fmt.Fprintln(deps.Stdout, "Nothing due for rescraping")
			return nil
		}
		fmt.Fprintf(deps.Stdout, "Enqueued %d tasks\n", enqueued)
		return nil
	}

	// Sync mode scrapes the batch in-process instead of handing it to
	// queue workers.
	tasks, err := scheduler.SelectCandidates(deps.Ctx, c.Size, c.MaxAge)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(deps.Stdout, "Nothing due for rescraping")
		return nil
	}

	urls := make([]string, len(tasks))
	for i, task := range tasks {
		urls[i] = task.URL
	}

	progress := func(event scrape.ProgressEvent) {
		switch event.Type {
		case scrape.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Rescraping %d entries\n", event.Total)
		case scrape.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.URL, pricewatch.ErrorMessage(event.Error))
		}
	}

	batch := deps.Scraper.ScrapeMany(deps.Ctx, urls, progress)

	saved := 0
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

	fmt.Fprintf(deps.Stdout, "Scraped %d/%d, saved %d\n", batch.Success, batch.Total, saved)
	return nil
}
