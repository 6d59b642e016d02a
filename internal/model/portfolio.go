package model

// Performer identifies the best or worst holding by per-unit gain. Symbol is
// "none" when the portfolio is empty.
type Performer struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name,omitempty"`
	GainPercentage float64 `json:"gainPercentage"`
}

// PortfolioSummary is derived from the holding set on every request and is
// never persisted.
type PortfolioSummary struct {
	TotalValue       float64               `json:"totalValue"`
	TotalCost        float64               `json:"totalCost"`
	TotalReturn      float64               `json:"totalReturn"`
	ReturnPercentage float64               `json:"returnPercentage"`
	Allocation       map[AssetType]float64 `json:"allocation"`
	BestPerformer    Performer             `json:"bestPerformer"`
	WorstPerformer   Performer             `json:"worstPerformer"`
	Holdings         []*Investment         `json:"holdings"`
}
