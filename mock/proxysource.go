package mock

import (
	"context"

	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.ProxySource = (*ProxySource)(nil)

// ProxySource is a mock implementation of pricewatch.ProxySource.
type ProxySource struct {
	NextFn    func(ctx context.Context) *pricewatch.ProxyInfo
	AllFn     func(ctx context.Context) []*pricewatch.ProxyInfo
	HealthyFn func(ctx context.Context) bool
	StatusFn  func(ctx context.Context) pricewatch.PoolStatus
}

func (s *ProxySource) Next(ctx context.Context) *pricewatch.ProxyInfo {
	return s.NextFn(ctx)
}

func (s *ProxySource) All(ctx context.Context) []*pricewatch.ProxyInfo {
	return s.AllFn(ctx)
}

func (s *ProxySource) Healthy(ctx context.Context) bool {
	return s.HealthyFn(ctx)
}

func (s *ProxySource) Status(ctx context.Context) pricewatch.PoolStatus {
	return s.StatusFn(ctx)
}
