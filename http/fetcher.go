// Package http provides HTTP-based implementations of pricewatch.Fetcher
// and pricewatch.ProxySource for talking to retail sites and the proxy
// pool service.
package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dbalogun/pricewatch"
)

// DefaultFetchTimeout is the default timeout for a single page request.
// Retail pages behind proxies are slow; this is deliberately more generous
// than a typical API client timeout.
const DefaultFetchTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read. Product pages are
// well under this; anything larger is truncated.
const maxBodyBytes = 2 << 20

// baseAccept is the Accept header presented for page requests.
const baseAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// Ensure Fetcher implements pricewatch.Fetcher at compile time.
var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves product page HTML over HTTP, rotating user agents per
// attempt and egress proxies per request.
type Fetcher struct {
	client    *http.Client
	transport *http.Transport
	proxies   pricewatch.ProxySource
	logger    *slog.Logger
	timeout   time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for page requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithProxySource sets the source of egress proxies. Without one every
// request goes out directly.
func WithProxySource(src pricewatch.ProxySource) Option {
	return func(f *Fetcher) {
		f.proxies = src
	}
}

// WithLogger sets the logger used for proxy-policy events.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.transport = http.DefaultTransport.(*http.Transport).Clone()
	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: f.transport,
	}

	return f
}

// Fetch retrieves the HTML of the product page at pageURL. A proxy is
// requested from the configured source for each call; when none is
// available the request proceeds directly, which is logged rather than
// silently absorbed.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, platform pricewatch.Platform, attempt int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "invalid request for %s: %v", pageURL, err)
	}

	req.Header.Set("User-Agent", pricewatch.UserAgentFor(attempt))
	req.Header.Set("Accept", baseAccept)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if lang := platform.AcceptLanguage(); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	client := f.clientFor(ctx, pageURL, attempt)

	resp, err := client.Do(req)
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "request failed for %s: %v", pageURL, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, pageURL); err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "reading response from %s: %v", pageURL, err)
	}

	html := string(body)
	if strings.TrimSpace(html) == "" {
		return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "empty response body from %s", pageURL)
	}
	if sig := pricewatch.MatchBlockSignature(html); sig != "" {
		return "", pricewatch.Errorf(pricewatch.EBLOCKED, "blocked response from %s: matched %q", pageURL, sig)
	}

	return html, nil
}

// clientFor returns the client for one request, routed through the next
// proxy in rotation when one is available.
func (f *Fetcher) clientFor(ctx context.Context, pageURL string, attempt int) *http.Client {
	if f.proxies == nil {
		return f.client
	}

	proxy := f.proxies.Next(ctx)
	if proxy == nil {
		f.logger.Warn("fetching without proxy",
			"url", pageURL,
			"attempt", attempt,
		)
		return f.client
	}

	transport := f.transport.Clone()
	transport.Proxy = http.ProxyURL(&url.URL{Scheme: "http", Host: proxy.Addr()})

	return &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}
}

// Close releases resources. For the HTTP fetcher this closes idle
// connections held by the shared transport.
func (f *Fetcher) Close() error {
	f.transport.CloseIdleConnections()
	return nil
}

// classifyStatus maps a non-2xx status to the error the retry loop keys
// on: 404 is terminal not-found, other 4xx are terminal, 5xx is retryable.
func classifyStatus(status int, pageURL string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return pricewatch.Errorf(pricewatch.ENOTFOUND, "page not found: %s", pageURL)
	case status >= 500:
		return pricewatch.Errorf(pricewatch.EUNAVAILABLE, "HTTP %d for %s", status, pageURL)
	default:
		return pricewatch.Errorf(pricewatch.EINTERNAL, "HTTP %d for %s", status, pageURL)
	}
}
