package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/dbalogun/pricewatch"
)

// MaxFetchAttempts caps the fetch retry budget for a single URL
// regardless of configuration.
const MaxFetchAttempts = 3

// DefaultRetryWait is the pause between fetch attempts of the same URL.
const DefaultRetryWait = 2 * time.Second

// AttemptsError reports that every fetch attempt for a URL failed. It
// carries the attempt count and the last underlying cause; Unwrap exposes
// the cause so its error code, and with it task-level retryability, is
// preserved.
type AttemptsError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("all %d fetch attempts failed for %s: %v", e.Attempts, e.URL, e.Last)
}

func (e *AttemptsError) Unwrap() error {
	return e.Last
}

// FetchWithRetry fetches a URL through fetcher with a bounded retry loop.
// The attempt number is passed through so the fetcher rotates its user
// agent and requests a fresh proxy on every try. Only retryable failures
// (blocked responses, unavailable upstreams) consume the retry budget;
// terminal errors surface immediately. Exhausting the budget returns an
// AttemptsError wrapping the last cause.
func FetchWithRetry(ctx context.Context, fetcher pricewatch.Fetcher, url string, platform pricewatch.Platform, maxAttempts int, wait time.Duration) (string, error) {
	attempts := maxAttempts
	if attempts <= 0 || attempts > MaxFetchAttempts {
		attempts = MaxFetchAttempts
	}
	if wait <= 0 {
		wait = DefaultRetryWait
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		html, err := fetcher.Fetch(ctx, url, platform, attempt)
		if err == nil {
			return html, nil
		}
		if !pricewatch.Retryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", &AttemptsError{URL: url, Attempts: attempts, Last: lastErr}
}
