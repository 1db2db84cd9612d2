package mock

import (
	"context"

	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.TaskQueue = (*TaskQueue)(nil)

// TaskQueue is a mock implementation of pricewatch.TaskQueue.
type TaskQueue struct {
	EnqueueFn func(ctx context.Context, task *pricewatch.ScrapeTask) error
	DequeueFn func(ctx context.Context) (*pricewatch.ScrapeTask, error)
	LenFn     func(ctx context.Context) (int, error)
}

func (q *TaskQueue) Enqueue(ctx context.Context, task *pricewatch.ScrapeTask) error {
	return q.EnqueueFn(ctx, task)
}

func (q *TaskQueue) Dequeue(ctx context.Context) (*pricewatch.ScrapeTask, error) {
	return q.DequeueFn(ctx)
}

func (q *TaskQueue) Len(ctx context.Context) (int, error) {
	return q.LenFn(ctx)
}
