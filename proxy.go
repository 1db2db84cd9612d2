package pricewatch

import (
	"context"
	"net"
	"strconv"
	"time"
)

// ProxyInfo describes an egress proxy obtained from the pool service.
// Instances are supplied per request and never persisted.
type ProxyInfo struct {
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Healthy     bool      `json:"healthy"`
	LastChecked time.Time `json:"lastChecked"`
}

// Addr returns the proxy in host:port form.
func (p ProxyInfo) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// PoolStatus summarizes proxy pool health.
type PoolStatus struct {
	Total   int    `json:"total"`
	Healthy int    `json:"healthy"`
	Message string `json:"message"`
}

// ProxySource supplies egress proxies for outbound fetches.
//
// Implementations must be safe for concurrent use; fetch workers call Next
// from many goroutines at once.
type ProxySource interface {
	// Next returns the next proxy in rotation, or nil when none is
	// available. Callers decide whether to proceed without one.
	Next(ctx context.Context) *ProxyInfo

	// All returns every known proxy. Implementations may serve results
	// from a short-lived cache.
	All(ctx context.Context) []*ProxyInfo

	// Healthy reports whether the pool has at least one healthy proxy.
	Healthy(ctx context.Context) bool

	// Status summarizes pool health for operational visibility.
	Status(ctx context.Context) PoolStatus
}
