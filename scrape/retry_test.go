package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dbalogun/pricewatch"
	pwhttp "github.com/dbalogun/pricewatch/http"
	"github.com/dbalogun/pricewatch/mock"
	"github.com/dbalogun/pricewatch/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns on first success", func(t *testing.T) {
		t.Parallel()

		var calls int
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pricewatch.Platform, _ int) (string, error) {
				calls++
				return "<html>ok</html>", nil
			},
		}

		html, err := scrape.FetchWithRetry(context.Background(), fetcher, "https://www.amazon.com/dp/B0TEST", pricewatch.Amazon, 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts the budget on retryable failures", func(t *testing.T) {
		t.Parallel()

		var attempts []int
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pricewatch.Platform, attempt int) (string, error) {
				attempts = append(attempts, attempt)
				return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "HTTP 503")
			},
		}

		// Configured budget above the cap is clamped to 3 calls.
		_, err := scrape.FetchWithRetry(context.Background(), fetcher, "https://www.amazon.com/dp/B0TEST", pricewatch.Amazon, 5, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, []int{0, 1, 2}, attempts)
		assert.Contains(t, err.Error(), "all 3 fetch attempts failed")
		assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(err))
		assert.True(t, pricewatch.Retryable(err))

		var attemptsErr *scrape.AttemptsError
		require.ErrorAs(t, err, &attemptsErr)
		assert.Equal(t, 3, attemptsErr.Attempts)
		assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(attemptsErr.Last))
	})

	t.Run("honors a configured budget below the cap", func(t *testing.T) {
		t.Parallel()

		var calls int
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pricewatch.Platform, _ int) (string, error) {
				calls++
				return "", pricewatch.Errorf(pricewatch.EBLOCKED, "captcha page")
			},
		}

		_, err := scrape.FetchWithRetry(context.Background(), fetcher, "https://www.amazon.com/dp/B0TEST", pricewatch.Amazon, 2, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, pricewatch.EBLOCKED, pricewatch.ErrorCode(err))
	})

	t.Run("stops immediately on terminal errors", func(t *testing.T) {
		t.Parallel()

		var calls int
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pricewatch.Platform, _ int) (string, error) {
				calls++
				return "", pricewatch.Errorf(pricewatch.ENOTFOUND, "page not found")
			},
		}

		_, err := scrape.FetchWithRetry(context.Background(), fetcher, "https://www.amazon.com/dp/B0GONE", pricewatch.Amazon, 3, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, pricewatch.ENOTFOUND, pricewatch.ErrorCode(err))
	})

	t.Run("recovers after a blocked attempt", func(t *testing.T) {
		t.Parallel()

		var calls int
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pricewatch.Platform, _ int) (string, error) {
				calls++
				if calls == 1 {
					return "", pricewatch.Errorf(pricewatch.EBLOCKED, "captcha page")
				}
				return "<html>recovered</html>", nil
			},
		}

		html, err := scrape.FetchWithRetry(context.Background(), fetcher, "https://www.amazon.com/dp/B0TEST", pricewatch.Amazon, 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "<html>recovered</html>", html)
		assert.Equal(t, 2, calls)
	})

	t.Run("requests a fresh proxy on every attempt", func(t *testing.T) {
		t.Parallel()

		// The proxy answers every attempt with a 503, exercising the full
		// budget. Each fetch asks the rotation for the next proxy.
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer proxy.Close()

		proxyURL, err := url.Parse(proxy.URL)
		require.NoError(t, err)
		proxyPort, err := strconv.Atoi(proxyURL.Port())
		require.NoError(t, err)

		var mu sync.Mutex
		var handed int
		source := &mock.ProxySource{
			NextFn: func(_ context.Context) *pricewatch.ProxyInfo {
				mu.Lock()
				defer mu.Unlock()
				handed++
				return &pricewatch.ProxyInfo{Host: proxyURL.Hostname(), Port: proxyPort, Healthy: true}
			},
		}

		fetcher := pwhttp.NewFetcher(
			pwhttp.WithProxySource(source),
			pwhttp.WithTimeout(2*time.Second),
		)
		defer fetcher.Close()

		_, err = scrape.FetchWithRetry(context.Background(), fetcher, "http://www.amazon.com/dp/B0TEST", pricewatch.Amazon, 3, time.Millisecond)

		require.Error(t, err)
		assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(err))
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, handed)
	})

	t.Run("respects context cancellation between attempts", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string, _ pricewatch.Platform, _ int) (string, error) {
				cancel()
				return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "HTTP 503")
			},
		}

		_, err := scrape.FetchWithRetry(ctx, fetcher, "https://www.amazon.com/dp/B0TEST", pricewatch.Amazon, 3, 10*time.Second)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
