package service

import (
	"net/http"

	"github.com/fintrackr/backend/internal/model"
	"github.com/shopspring/decimal"
)

// BuildPortfolioSummary derives portfolio metrics from a holding set. It is
// a pure function of its input: nothing is persisted, so the result can be
// re-derived at any time and there is no cached aggregate to invalidate.
//
// Sums run on decimals to keep long chains of quantity×price additions
// exact; the result converts back to float64 at the JSON boundary.
func BuildPortfolioSummary(holdings []*model.Investment) *model.PortfolioSummary {
	totalCost := decimal.Zero
	totalValue := decimal.Zero
	typeValues := make(map[model.AssetType]decimal.Decimal)

	best := model.Performer{Symbol: "none"}
	worst := model.Performer{Symbol: "none"}

	for i, holding := range holdings {
		qty := decimal.NewFromFloat(holding.Quantity)
		cost := qty.Mul(decimal.NewFromFloat(holding.PurchasePrice))
		value := qty.Mul(decimal.NewFromFloat(holding.CurrentPrice))
		totalCost = totalCost.Add(cost)
		totalValue = totalValue.Add(value)

		assetType := holding.AssetType
		if assetType == "" {
			assetType = model.AssetTypeOther
		}
		typeValues[assetType] = typeValues[assetType].Add(value)

		// Per-unit gain. A free position (purchase price 0) counts as 0%
		// rather than producing an unbounded value.
		gain := 0.0
		if holding.PurchasePrice > 0 {
			gain = (holding.CurrentPrice - holding.PurchasePrice) / holding.PurchasePrice * 100
		}
		if i == 0 || gain > best.GainPercentage {
			best = model.Performer{Symbol: holding.Symbol, Name: holding.Name, GainPercentage: gain}
		}
		if i == 0 || gain < worst.GainPercentage {
			worst = model.Performer{Symbol: holding.Symbol, Name: holding.Name, GainPercentage: gain}
		}
	}

	totalReturn := totalValue.Sub(totalCost)

	returnPct := 0.0
	if totalCost.IsPositive() {
		returnPct, _ = totalReturn.Div(totalCost).Mul(decimal.NewFromInt(100)).Float64()
	}

	allocation := make(map[model.AssetType]float64, len(typeValues))
	for assetType, value := range typeValues {
		pct := 0.0
		if totalValue.IsPositive() {
			pct, _ = value.Div(totalValue).Mul(decimal.NewFromInt(100)).Float64()
		}
		allocation[assetType] = pct
	}

	if holdings == nil {
		holdings = []*model.Investment{}
	}

	cost, _ := totalCost.Float64()
	value, _ := totalValue.Float64()
	ret, _ := totalReturn.Float64()
	return &model.PortfolioSummary{
		TotalValue:       value,
		TotalCost:        cost,
		TotalReturn:      ret,
		ReturnPercentage: returnPct,
		Allocation:       allocation,
		BestPerformer:    best,
		WorstPerformer:   worst,
		Holdings:         holdings,
	}
}

// GetPortfolioSummary computes the summary over the caller's holdings.
func (s *FinanceService) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	investments, err := s.store.ListInvestments(r.Context(), claims.UserID)
	if err != nil {
		writeStoreError(w, "list investments", err)
		return
	}
	writeJSON(w, http.StatusOK, BuildPortfolioSummary(investments))
}
