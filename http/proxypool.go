package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dbalogun/pricewatch"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultPoolTimeout is the default timeout for proxy pool service calls.
const DefaultPoolTimeout = 10 * time.Second

// DefaultCacheTTL is how long a fetched proxy list is served from cache
// before the pool service is asked again.
const DefaultCacheTTL = 60 * time.Second

const (
	poolRetryAttempts = 3
	defaultRetryWait  = 1 * time.Second
	proxyCacheKey     = "proxies"
)

// Ensure ProxyPool implements pricewatch.ProxySource at compile time.
var _ pricewatch.ProxySource = (*ProxyPool)(nil)

// ProxyPool is a client for the external proxy pool service.
//
// Concurrency contract: the proxy list cache holds immutable snapshots.
// A slice stored in the cache is never mutated afterwards, so concurrent
// readers share it safely; refreshes swap in a new slice. The rotation
// cursor is an atomic counter.
type ProxyPool struct {
	baseURL   string
	client    *http.Client
	fallback  []*pricewatch.ProxyInfo
	cache     *expirable.LRU[string, []*pricewatch.ProxyInfo]
	cursor    atomic.Uint64
	timeout   time.Duration
	cacheTTL  time.Duration
	retryWait time.Duration
}

// PoolOption configures a ProxyPool.
type PoolOption func(*ProxyPool)

// WithPoolTimeout sets the timeout for pool service requests.
// Defaults to DefaultPoolTimeout (10s) if not specified.
func WithPoolTimeout(d time.Duration) PoolOption {
	return func(p *ProxyPool) {
		p.timeout = d
	}
}

// WithFallback sets a static proxy list used when the pool service cannot
// be reached at all.
func WithFallback(proxies []pricewatch.ProxyInfo) PoolOption {
	return func(p *ProxyPool) {
		p.fallback = make([]*pricewatch.ProxyInfo, len(proxies))
		for i := range proxies {
			proxy := proxies[i]
			p.fallback[i] = &proxy
		}
	}
}

// WithCacheTTL sets how long the proxy list is cached.
// Defaults to DefaultCacheTTL (60s) if not specified.
func WithCacheTTL(d time.Duration) PoolOption {
	return func(p *ProxyPool) {
		p.cacheTTL = d
	}
}

// WithRetryWait sets the base delay between retries of pool service
// calls. The delay doubles on each retry. Defaults to 1s if not specified.
func WithRetryWait(d time.Duration) PoolOption {
	return func(p *ProxyPool) {
		p.retryWait = d
	}
}

// NewProxyPool creates a client for the proxy pool service at baseURL.
func NewProxyPool(baseURL string, opts ...PoolOption) *ProxyPool {
	p := &ProxyPool{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		timeout:   DefaultPoolTimeout,
		cacheTTL:  DefaultCacheTTL,
		retryWait: defaultRetryWait,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = &http.Client{Timeout: p.timeout}
	p.cache = expirable.NewLRU[string, []*pricewatch.ProxyInfo](1, nil, p.cacheTTL)

	return p
}

// Wire shapes of the pool service endpoints.
type nextProxyResponse struct {
	Proxy       string `json:"proxy"`
	IsHealthy   bool   `json:"is_healthy"`
	LastChecked string `json:"last_checked"`
}

type proxyEntry struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	IsHealthy   bool   `json:"is_healthy"`
	LastChecked string `json:"last_checked"`
}

type proxiesResponse struct {
	Proxies []proxyEntry `json:"proxies"`
	Total   int          `json:"total"`
}

type healthResponse struct {
	Status string `json:"status"`
	Stats  struct {
		TotalProxies   int `json:"total_proxies"`
		HealthyProxies int `json:"healthy_proxies"`
	} `json:"stats"`
}

// Next returns the next proxy in rotation. It asks the pool service
// first; if the service cannot be reached it rotates over the cached or
// fallback list, and returns nil only when no proxy is known at all.
func (p *ProxyPool) Next(ctx context.Context) *pricewatch.ProxyInfo {
	var wire nextProxyResponse
	if err := p.getJSON(ctx, "/proxy/next", &wire); err == nil {
		if info, err := parseProxyAddr(wire); err == nil {
			return info
		}
	}
	return p.rotate(ctx)
}

// All returns every known proxy. Results come from a short-lived cache;
// on a cache miss the pool service is queried, and on total failure the
// static fallback list (possibly empty) is returned.
func (p *ProxyPool) All(ctx context.Context) []*pricewatch.ProxyInfo {
	if cached, ok := p.cache.Get(proxyCacheKey); ok {
		return cached
	}

	var wire proxiesResponse
	if err := p.getJSON(ctx, "/proxies", &wire); err != nil {
		return p.fallback
	}

	proxies := make([]*pricewatch.ProxyInfo, 0, len(wire.Proxies))
	for _, entry := range wire.Proxies {
		proxies = append(proxies, &pricewatch.ProxyInfo{
			Host:        entry.Host,
			Port:        entry.Port,
			Healthy:     entry.IsHealthy,
			LastChecked: parseChecked(entry.LastChecked),
		})
	}
	p.cache.Add(proxyCacheKey, proxies)

	return proxies
}

// Healthy reports whether the pool has at least one healthy proxy.
func (p *ProxyPool) Healthy(ctx context.Context) bool {
	return p.Status(ctx).Healthy > 0
}

// Status summarizes pool health. When the service is unreachable the
// counts are computed from the cached or fallback list instead.
func (p *ProxyPool) Status(ctx context.Context) pricewatch.PoolStatus {
	var wire healthResponse
	if err := p.getJSON(ctx, "/health", &wire); err == nil {
		return pricewatch.PoolStatus{
			Total:   wire.Stats.TotalProxies,
			Healthy: wire.Stats.HealthyProxies,
			Message: wire.Status,
		}
	}

	proxies := p.All(ctx)
	healthy := 0
	for _, proxy := range proxies {
		if proxy.Healthy {
			healthy++
		}
	}
	return pricewatch.PoolStatus{
		Total:   len(proxies),
		Healthy: healthy,
		Message: "pool service unreachable",
	}
}

// rotate hands out proxies round-robin from the known list, preferring
// healthy ones.
func (p *ProxyPool) rotate(ctx context.Context) *pricewatch.ProxyInfo {
	proxies := p.All(ctx)

	healthy := make([]*pricewatch.ProxyInfo, 0, len(proxies))
	for _, proxy := range proxies {
		if proxy.Healthy {
			healthy = append(healthy, proxy)
		}
	}
	if len(healthy) == 0 {
		healthy = proxies
	}
	if len(healthy) == 0 {
		return nil
	}

	idx := int((p.cursor.Add(1) - 1) % uint64(len(healthy)))
	return healthy[idx]
}

// getJSON performs a GET against the pool service and decodes the JSON
// response into out. Network errors and 5xx responses are retried up to
// poolRetryAttempts times with exponential backoff; 4xx responses surface
// immediately.
func (p *ProxyPool) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < poolRetryAttempts; attempt++ {
		if attempt > 0 {
			wait := p.retryWait << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		retryable, err := p.tryGetJSON(ctx, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// tryGetJSON performs a single request. The first return value reports
// whether the failure is worth retrying.
func (p *ProxyPool) tryGetJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return false, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("pool service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("pool service returned HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("pool service returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return true, fmt.Errorf("reading pool service response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decoding pool service response: %w", err)
	}

	return false, nil
}

// parseProxyAddr converts the host:port form of /proxy/next into a
// ProxyInfo.
func parseProxyAddr(wire nextProxyResponse) (*pricewatch.ProxyInfo, error) {
	host, portStr, err := net.SplitHostPort(wire.Proxy)
	if err != nil {
		return nil, fmt.Errorf("malformed proxy address %q: %w", wire.Proxy, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("malformed proxy port %q: %w", portStr, err)
	}

	return &pricewatch.ProxyInfo{
		Host:        host,
		Port:        port,
		Healthy:     wire.IsHealthy,
		LastChecked: parseChecked(wire.LastChecked),
	}, nil
}

// parseChecked parses the pool service timestamp format, tolerating an
// absent or malformed value.
func parseChecked(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
