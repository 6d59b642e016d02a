package service

import (
	"net/http"
	"testing"

	"github.com/fintrackr/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvestment(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	t.Run("normalizes the symbol and fills defaults", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
			"symbol":        " vti ",
			"quantity":      10.0,
			"purchasePrice": 220.0,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var investment model.Investment
		decode(t, rec, &investment)
		assert.Equal(t, "VTI", investment.Symbol)
		assert.Equal(t, "VTI", investment.Name)
		assert.Equal(t, model.AssetTypeOther, investment.AssetType)
		assert.Equal(t, 220.0, investment.CurrentPrice)
	})

	t.Run("a second position for the symbol conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
			"symbol":        "VTI",
			"quantity":      5.0,
			"purchasePrice": 230.0,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("another user can hold the same symbol", func(t *testing.T) {
		otherToken := env.register(t, "Grace Hopper", "grace@example.com")
		rec := env.do(t, http.MethodPost, "/api/investments", otherToken, map[string]interface{}{
			"symbol":        "VTI",
			"quantity":      1.0,
			"purchasePrice": 225.0,
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("rejects an unknown asset type", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
			"symbol":    "GLD",
			"assetType": "commodity",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects negative quantities", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
			"symbol":   "GLD",
			"quantity": -1.0,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateInvestment(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	created := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
		"symbol":        "AAPL",
		"assetType":     "stock",
		"quantity":      10.0,
		"purchasePrice": 150.0,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var investment model.Investment
	decode(t, created, &investment)

	t.Run("updates prices and quantity", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/investments/"+investment.ID, token, map[string]interface{}{
			"quantity":     12.0,
			"currentPrice": 180.0,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated model.Investment
		decode(t, rec, &updated)
		assert.Equal(t, 12.0, updated.Quantity)
		assert.Equal(t, 180.0, updated.CurrentPrice)
		assert.Equal(t, 150.0, updated.PurchasePrice)
	})

	t.Run("the symbol is immutable", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/investments/"+investment.ID, token, map[string]interface{}{
			"symbol": "MSFT",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "symbol")
	})

	t.Run("restating the same symbol is a no-op", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/investments/"+investment.ID, token, map[string]interface{}{
			"symbol": "aapl",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDeleteInvestment(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	created := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
		"symbol": "AAPL",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var investment model.Investment
	decode(t, created, &investment)

	rec := env.do(t, http.MethodDelete, "/api/investments/"+investment.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("the symbol is reusable after deletion", func(t *testing.T) {
		again := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
			"symbol": "AAPL",
		})
		assert.Equal(t, http.StatusCreated, again.Code)
	})
}

func TestRefreshInvestmentPrices(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	for _, symbol := range []string{"AAPL", "VTI"} {
		rec := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
			"symbol":        symbol,
			"quantity":      1.0,
			"purchasePrice": 100.0,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/investments/refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Investments []model.Investment `json:"investments"`
		Updated     int                `json:"updated"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.Updated)
	require.Len(t, resp.Investments, 2)
	for _, investment := range resp.Investments {
		assert.Greater(t, investment.CurrentPrice, 0.0)
	}
}

func TestGetQuote(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	rec := env.do(t, http.MethodGet, "/api/market/quote/aapl", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quote struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	decode(t, rec, &quote)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Greater(t, quote.Price, 0.0)
}
