package pricewatch

import (
	"context"
	"time"
)

// ScrapeTask is one unit of rescrape work emitted by the scheduler. Tasks
// are discarded on terminal success or failure.
type ScrapeTask struct {
	ID           string    `json:"id"`
	EntryID      string    `json:"entryId"`
	URL          string    `json:"url"`
	Platform     Platform  `json:"platform"`
	AttemptCount int       `json:"attemptCount"`
	EnqueuedAt   time.Time `json:"enqueuedAt"`
}

// Validate returns an error if the task contains invalid fields.
func (t *ScrapeTask) Validate() error {
	if t.EntryID == "" {
		return Errorf(EINVALID, "task entry ID required")
	}
	if t.URL == "" {
		return Errorf(EINVALID, "task URL required")
	}
	if !t.Platform.Valid() {
		return Errorf(EUNSUPPORTED, "unknown platform %q", t.Platform)
	}
	return nil
}

// TaskQueue dispatches scrape tasks to workers. Delivery is at-least-once;
// tasks must tolerate duplicate execution.
type TaskQueue interface {
	// Enqueue appends a task to the queue.
	Enqueue(ctx context.Context, task *ScrapeTask) error

	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (*ScrapeTask, error)

	// Len returns the number of queued tasks.
	Len(ctx context.Context) (int, error)
}
