package prometheus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/mock"
	pwprom "github.com/dbalogun/pricewatch/prometheus"
)

func TestInstrumentedWriter_SaveProduct(t *testing.T) {
	t.Parallel()

	product := &pricewatch.NormalizedProduct{
		ID:           "AMAZON-B08N5WRWNW",
		Title:        "Echo Dot (4th Gen) Smart Speaker",
		Platform:     pricewatch.Amazon,
		Price:        pricewatch.Price{Amount: 49.99, Currency: "USD"},
		Completeness: 0.8,
	}

	t.Run("counts successful saves", func(t *testing.T) {
		t.Parallel()

		metrics := pwprom.NewMetrics()
		inner := &mock.ProductWriter{
			SaveProductFn: func(ctx context.Context, product *pricewatch.NormalizedProduct) error {
				return nil
			},
		}

		writer := pwprom.NewInstrumentedWriter(inner, metrics)
		require.NoError(t, writer.SaveProduct(context.Background(), product))
		require.NoError(t, writer.SaveProduct(context.Background(), product))

		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ProductsSavedTotal))
	})

	t.Run("skips failed saves", func(t *testing.T) {
		t.Parallel()

		metrics := pwprom.NewMetrics()
		inner := &mock.ProductWriter{
			SaveProductFn: func(ctx context.Context, product *pricewatch.NormalizedProduct) error {
				return errors.New("disk full")
			},
		}

		writer := pwprom.NewInstrumentedWriter(inner, metrics)
		require.Error(t, writer.SaveProduct(context.Background(), product))

		assert.Zero(t, testutil.ToFloat64(metrics.ProductsSavedTotal))
	})
}
