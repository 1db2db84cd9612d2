package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dbalogun/pricewatch"
)

// DefaultQueueKey is the Redis list that holds pending scrape tasks.
const DefaultQueueKey = "pricewatch:tasks"

// popTimeout bounds a single blocking pop. Dequeue loops on it so a blocked
// call observes context cancellation between polls.
const popTimeout = time.Second

// Ensure type implements interface.
var _ pricewatch.TaskQueue = (*Queue)(nil)

// Queue is a Redis-backed task queue. Tasks are stored as JSON in a list,
// pushed at the head and popped from the tail so dequeue order matches
// enqueue order. Delivery is at-least-once; a task popped by a worker that
// dies is lost, which the scheduler tolerates by re-selecting stale entries
// on the next batch.
type Queue struct {
	client *redis.Client
	key    string
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueKey overrides the Redis key tasks are stored under.
func WithQueueKey(key string) QueueOption {
	return func(q *Queue) { q.key = key }
}

// NewQueue returns a task queue backed by the given Redis client.
func NewQueue(client *redis.Client, opts ...QueueOption) *Queue {
	q := &Queue{client: client, key: DefaultQueueKey}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue validates the task and appends it to the queue. A missing task ID
// or enqueue time is filled in before the task is stored.
func (q *Queue) Enqueue(ctx context.Context, task *pricewatch.ScrapeTask) error {
	if task == nil {
		return pricewatch.Errorf(pricewatch.EINVALID, "task required")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	if err := task.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return pricewatch.Errorf(pricewatch.EINTERNAL, "marshal task %s: %v", task.ID, err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return pricewatch.Errorf(pricewatch.EUNAVAILABLE, "enqueue task %s: %v", task.ID, err)
	}
	return nil
}

// Dequeue removes and returns the oldest pending task, blocking until one is
// available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (*pricewatch.ScrapeTask, error) {
	for {
		vals, err := q.client.BRPop(ctx, popTimeout, q.key).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil):
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			return nil, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "dequeue task: %v", err)
		}

		if len(vals) != 2 {
			return nil, pricewatch.Errorf(pricewatch.EINTERNAL, "unexpected reply of %d values from queue pop", len(vals))
		}

		var task pricewatch.ScrapeTask
		if err := json.Unmarshal([]byte(vals[1]), &task); err != nil {
			return nil, pricewatch.Errorf(pricewatch.EINTERNAL, "malformed task payload: %v", err)
		}
		return &task, nil
	}
}

// Len reports the number of pending tasks.
func (q *Queue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, pricewatch.Errorf(pricewatch.EUNAVAILABLE, "queue length: %v", err)
	}
	return int(n), nil
}
