package prometheus

import (
	"context"

	"github.com/dbalogun/pricewatch"
)

// Ensure InstrumentedWriter implements pricewatch.ProductWriter.
var _ pricewatch.ProductWriter = (*InstrumentedWriter)(nil)

// InstrumentedWriter wraps a ProductWriter with save counters and a
// completeness distribution.
type InstrumentedWriter struct {
	next    pricewatch.ProductWriter
	metrics *Metrics
}

// NewInstrumentedWriter creates a new InstrumentedWriter.
func NewInstrumentedWriter(next pricewatch.ProductWriter, metrics *Metrics) *InstrumentedWriter {
	return &InstrumentedWriter{next: next, metrics: metrics}
}

// SaveProduct delegates to the wrapped writer. Only successful saves are
// counted and observed.
func (w *InstrumentedWriter) SaveProduct(ctx context.Context, product *pricewatch.NormalizedProduct) error {
	err := w.next.SaveProduct(ctx, product)
	if err != nil {
		return err
	}
	w.metrics.IncProductSaved()
	w.metrics.ObserveCompleteness(product.Completeness)
	return nil
}
