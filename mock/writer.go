package mock

import (
	"context"

	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.ProductWriter = (*ProductWriter)(nil)

// ProductWriter is a mock implementation of pricewatch.ProductWriter.
type ProductWriter struct {
	SaveProductFn func(ctx context.Context, product *pricewatch.NormalizedProduct) error
}

func (w *ProductWriter) SaveProduct(ctx context.Context, product *pricewatch.NormalizedProduct) error {
	return w.SaveProductFn(ctx, product)
}
