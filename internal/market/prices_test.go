package market

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPriceSource(t *testing.T) {
	ctx := context.Background()

	t.Run("same seed produces the same quotes", func(t *testing.T) {
		a := NewMockPriceSource(7)
		b := NewMockPriceSource(7)

		qa, err := a.GetQuote(ctx, "AAPL")
		require.NoError(t, err)
		qb, err := b.GetQuote(ctx, "AAPL")
		require.NoError(t, err)

		assert.Equal(t, qa.Price, qb.Price)
	})

	t.Run("symbol is normalized", func(t *testing.T) {
		source := NewMockPriceSource(7)
		quote, err := source.GetQuote(ctx, "  aapl ")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", quote.Symbol)
	})

	t.Run("drift stays within bounds", func(t *testing.T) {
		source := NewMockPriceSource(7)

		prev, err := source.GetQuote(ctx, "VTI")
		require.NoError(t, err)
		for i := 0; i < 50; i++ {
			quote, err := source.GetQuote(ctx, "VTI")
			require.NoError(t, err)
			assert.Greater(t, quote.Price, 0.0)

			drift := math.Abs(quote.Price-prev.Price) / prev.Price
			assert.LessOrEqual(t, drift, 0.021)
			prev = quote
		}
	})

	t.Run("empty symbol errors", func(t *testing.T) {
		source := NewMockPriceSource(7)
		_, err := source.GetQuote(ctx, "   ")
		assert.Error(t, err)
	})
}
