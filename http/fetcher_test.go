package http_test

import (
	"bytes"
	"context"
	"log/slog"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Product page</body></html>"))
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Product page</body></html>", html)
	})

	t.Run("sends platform headers and rotates the user agent", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var agents []string
		var lang string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			agents = append(agents, r.Header.Get("User-Agent"))
			lang = r.Header.Get("Accept-Language")
			mu.Unlock()
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Jumia, 0)
		require.NoError(t, err)
		_, err = fetcher.Fetch(context.Background(), server.URL, pricewatch.Jumia, 1)
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, agents, 2)
		assert.NotEmpty(t, agents[0])
		assert.NotEqual(t, agents[0], agents[1])
		assert.Contains(t, lang, "en-NG")
	})

	t.Run("classifies challenge pages as blocked", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html><body>Enter the characters you see below</body></html>"))
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
		assert.Equal(t, pricewatch.EBLOCKED, pricewatch.ErrorCode(err))
		assert.True(t, pricewatch.Retryable(err))
	})

	t.Run("classifies 404 as not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
		assert.Equal(t, pricewatch.ENOTFOUND, pricewatch.ErrorCode(err))
		assert.False(t, pricewatch.Retryable(err))
	})

	t.Run("classifies server errors as retryable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
		assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(err))
		assert.True(t, pricewatch.Retryable(err))
	})

	t.Run("classifies other client errors as terminal", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
		assert.Equal(t, pricewatch.EINTERNAL, pricewatch.ErrorCode(err))
		assert.False(t, pricewatch.Retryable(err))
	})

	t.Run("classifies network failures as retryable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		fetcher := pwhttp.NewFetcher(pwhttp.WithTimeout(time.Second))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
		assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(err))
	})

	t.Run("rejects an empty response body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("  \n "))
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
		assert.Equal(t, pricewatch.EUNAVAILABLE, pricewatch.ErrorCode(err))
	})

	t.Run("routes the request through the supplied proxy", func(t *testing.T) {
		t.Parallel()

		// The proxy server sees the absolute target URI on its request line.
		var mu sync.Mutex
		var proxied string
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			proxied = r.URL.String()
			mu.Unlock()
			_, _ = w.Write([]byte("<html>via proxy</html>"))
		}))
		defer proxy.Close()

		proxyURL, err := url.Parse(proxy.URL)
		require.NoError(t, err)
		proxyPort, err := strconv.Atoi(proxyURL.Port())
		require.NoError(t, err)

		source := &mock.ProxySource{
			NextFn: func(ctx context.Context) *pricewatch.ProxyInfo {
				return &pricewatch.ProxyInfo{Host: proxyURL.Hostname(), Port: proxyPort, Healthy: true}
			},
		}

		fetcher := pwhttp.NewFetcher(pwhttp.WithProxySource(source))
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), "http://www.amazon.com/dp/B08N5WRWNW", pricewatch.Amazon, 0)
		require.NoError(t, err)
		assert.Equal(t, "<html>via proxy</html>", html)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "http://www.amazon.com/dp/B08N5WRWNW", proxied)
	})

	t.Run("logs when no proxy is available and fetches directly", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>direct</html>"))
		}))
		defer server.Close()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		source := &mock.ProxySource{
			NextFn: func(ctx context.Context) *pricewatch.ProxyInfo { return nil },
		}

		fetcher := pwhttp.NewFetcher(
			pwhttp.WithProxySource(source),
			pwhttp.WithLogger(logger),
		)
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL, pricewatch.Amazon, 0)
		require.NoError(t, err)
		assert.Equal(t, "<html>direct</html>", html)
		assert.Contains(t, buf.String(), "fetching without proxy")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("<html>late</html>"))
		}))
		defer server.Close()

		fetcher := pwhttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL, pricewatch.Amazon, 0)
		require.Error(t, err)
	})
}
