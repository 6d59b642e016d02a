package service

import (
	"net/http"
	"testing"

	"github.com/fintrackr/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPortfolioSummary(t *testing.T) {
	t.Run("totals and performers", func(t *testing.T) {
		holdings := []*model.Investment{
			{Symbol: "X", Name: "X Corp", AssetType: model.AssetTypeStock, Quantity: 10, PurchasePrice: 100, CurrentPrice: 120},
			{Symbol: "Y", Name: "Y Corp", AssetType: model.AssetTypeStock, Quantity: 10, PurchasePrice: 100, CurrentPrice: 90},
		}

		summary := BuildPortfolioSummary(holdings)

		assert.Equal(t, 2000.0, summary.TotalCost)
		assert.Equal(t, 2100.0, summary.TotalValue)
		assert.Equal(t, 100.0, summary.TotalReturn)
		assert.InDelta(t, 5.0, summary.ReturnPercentage, 1e-9)

		assert.Equal(t, "X", summary.BestPerformer.Symbol)
		assert.InDelta(t, 20.0, summary.BestPerformer.GainPercentage, 1e-9)
		assert.Equal(t, "Y", summary.WorstPerformer.Symbol)
		assert.InDelta(t, -10.0, summary.WorstPerformer.GainPercentage, 1e-9)
	})

	t.Run("empty portfolio", func(t *testing.T) {
		summary := BuildPortfolioSummary(nil)

		assert.Zero(t, summary.TotalValue)
		assert.Zero(t, summary.TotalCost)
		assert.Zero(t, summary.TotalReturn)
		assert.Zero(t, summary.ReturnPercentage)
		assert.Equal(t, "none", summary.BestPerformer.Symbol)
		assert.Equal(t, "none", summary.WorstPerformer.Symbol)
		assert.NotNil(t, summary.Holdings)
		assert.Empty(t, summary.Holdings)
	})

	t.Run("zero cost yields zero return percentage", func(t *testing.T) {
		holdings := []*model.Investment{
			{Symbol: "FREE", Quantity: 5, PurchasePrice: 0, CurrentPrice: 10},
		}

		summary := BuildPortfolioSummary(holdings)

		assert.Equal(t, 50.0, summary.TotalValue)
		assert.Zero(t, summary.TotalCost)
		assert.Zero(t, summary.ReturnPercentage)
		// A free position has no meaningful per-unit gain either.
		assert.Zero(t, summary.BestPerformer.GainPercentage)
	})

	t.Run("allocation splits by asset type", func(t *testing.T) {
		holdings := []*model.Investment{
			{Symbol: "VTI", AssetType: model.AssetTypeStock, Quantity: 1, PurchasePrice: 300, CurrentPrice: 300},
			{Symbol: "BND", AssetType: model.AssetTypeBond, Quantity: 1, PurchasePrice: 100, CurrentPrice: 100},
		}

		summary := BuildPortfolioSummary(holdings)

		assert.InDelta(t, 75.0, summary.Allocation[model.AssetTypeStock], 1e-9)
		assert.InDelta(t, 25.0, summary.Allocation[model.AssetTypeBond], 1e-9)

		total := 0.0
		for _, pct := range summary.Allocation {
			total += pct
		}
		assert.InDelta(t, 100.0, total, 1e-9)
	})

	t.Run("missing asset type counts as other", func(t *testing.T) {
		holdings := []*model.Investment{
			{Symbol: "MYSTERY", Quantity: 1, PurchasePrice: 50, CurrentPrice: 50},
		}

		summary := BuildPortfolioSummary(holdings)
		assert.InDelta(t, 100.0, summary.Allocation[model.AssetTypeOther], 1e-9)
	})

	t.Run("single holding is both best and worst", func(t *testing.T) {
		holdings := []*model.Investment{
			{Symbol: "ONLY", Quantity: 1, PurchasePrice: 100, CurrentPrice: 110},
		}

		summary := BuildPortfolioSummary(holdings)
		assert.Equal(t, "ONLY", summary.BestPerformer.Symbol)
		assert.Equal(t, "ONLY", summary.WorstPerformer.Symbol)
	})
}

func TestGetPortfolioSummary(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "Ada Lovelace", "ada@example.com")

	create := env.do(t, http.MethodPost, "/api/investments", token, map[string]interface{}{
		"symbol":        "VTI",
		"assetType":     "stock",
		"quantity":      10.0,
		"purchasePrice": 100.0,
		"currentPrice":  120.0,
	})
	require.Equal(t, http.StatusCreated, create.Code)

	rec := env.do(t, http.MethodGet, "/api/portfolio/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary model.PortfolioSummary
	decode(t, rec, &summary)
	assert.Equal(t, 1000.0, summary.TotalCost)
	assert.Equal(t, 1200.0, summary.TotalValue)
	assert.Equal(t, "VTI", summary.BestPerformer.Symbol)
	require.Len(t, summary.Holdings, 1)
}
