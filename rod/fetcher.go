package rod

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dbalogun/pricewatch"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page fetch. Rendering a retail page
// in a real browser is slower than a plain HTTP request, so this is looser
// than the HTTP fetcher's default.
const DefaultFetchTimeout = 45 * time.Second

// Ensure Fetcher implements pricewatch.Fetcher at compile time.
var _ pricewatch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered product page HTML using Chrome browser
// automation. Pages that build their price or title client-side are invisible
// to the HTTP fetcher; this one executes their scripts first.
//
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager     *BrowserManager
	managerOpts []ManagerOption
	timeout     time.Duration
	closed      atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single page fetch.
// Defaults to DefaultFetchTimeout (45s) if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithManagerOptions forwards options to the BrowserManager the Fetcher
// launches, e.g. WithProxy or WithMaxPages.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = opts
	}
}

// NewFetcher creates a new Fetcher backed by a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to pageURL and returns the rendered HTML. The user agent
// rotates with the attempt number and the Accept-Language header follows the
// platform's storefront locale, same as the HTTP fetcher. Challenge pages are
// classified EBLOCKED after rendering.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, platform pricewatch.Platform, attempt int) (string, error) {
	if f.closed.Load() {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "opening page for %s: %v", pageURL, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      pricewatch.UserAgentFor(attempt),
		AcceptLanguage: platform.AcceptLanguage(),
	}); err != nil {
		return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "setting user agent for %s: %v", pageURL, err)
	}

	if err := page.Navigate(pageURL); err != nil {
		return "", classifyFetchError(ctx, pageURL, err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", classifyFetchError(ctx, pageURL, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", classifyFetchError(ctx, pageURL, err)
	}

	f.manager.IncrementPageCount()

	if strings.TrimSpace(html) == "" {
		return "", pricewatch.Errorf(pricewatch.EUNAVAILABLE, "empty page at %s", pageURL)
	}
	if sig := pricewatch.MatchBlockSignature(html); sig != "" {
		return "", pricewatch.Errorf(pricewatch.EBLOCKED, "blocked page at %s: matched %q", pageURL, sig)
	}

	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// classifyFetchError keeps context errors bare so callers can match them
// with errors.Is; everything else from the browser is a retryable outage.
func classifyFetchError(ctx context.Context, pageURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return pricewatch.Errorf(pricewatch.EUNAVAILABLE, "fetching %s: %v", pageURL, err)
}
