package service

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fintrackr/backend/internal/model"
	"github.com/fintrackr/backend/internal/store"
	"github.com/gorilla/mux"
)

type investmentRequest struct {
	Symbol        *string    `json:"symbol"`
	Name          *string    `json:"name"`
	AssetType     *string    `json:"assetType"`
	Quantity      *float64   `json:"quantity"`
	PurchasePrice *float64   `json:"purchasePrice"`
	CurrentPrice  *float64   `json:"currentPrice"`
	PurchaseDate  *time.Time `json:"purchaseDate"`
	Notes         *string    `json:"notes"`
}

func parseAssetType(raw string) (model.AssetType, bool) {
	switch model.AssetType(raw) {
	case model.AssetTypeStock, model.AssetTypeBond, model.AssetTypeRealEstate,
		model.AssetTypeCrypto, model.AssetTypeOther:
		return model.AssetType(raw), true
	}
	return "", false
}

// CreateInvestment opens a position. One row is the user's entire position
// in a symbol, so a second create for the same symbol conflicts.
func (s *FinanceService) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.Symbol == nil || strings.TrimSpace(*req.Symbol) == "" {
		fields["symbol"] = "symbol is required"
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		fields["quantity"] = "quantity must not be negative"
	}
	if req.PurchasePrice != nil && *req.PurchasePrice < 0 {
		fields["purchasePrice"] = "purchase price must not be negative"
	}
	if req.CurrentPrice != nil && *req.CurrentPrice < 0 {
		fields["currentPrice"] = "current price must not be negative"
	}
	assetType := model.AssetTypeOther
	if req.AssetType != nil && *req.AssetType != "" {
		parsed, valid := parseAssetType(*req.AssetType)
		if !valid {
			fields["assetType"] = "assetType must be one of stock, bond, real_estate, crypto, other"
		} else {
			assetType = parsed
		}
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	now := time.Now()
	investment := &model.Investment{
		UserID:       claims.UserID,
		Symbol:       strings.ToUpper(strings.TrimSpace(*req.Symbol)),
		AssetType:    assetType,
		PurchaseDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Name != nil {
		investment.Name = strings.TrimSpace(*req.Name)
	}
	if investment.Name == "" {
		investment.Name = investment.Symbol
	}
	if req.Quantity != nil {
		investment.Quantity = *req.Quantity
	}
	if req.PurchasePrice != nil {
		investment.PurchasePrice = *req.PurchasePrice
	}
	// Until a market refresh runs, the position is valued at cost.
	investment.CurrentPrice = investment.PurchasePrice
	if req.CurrentPrice != nil {
		investment.CurrentPrice = *req.CurrentPrice
	}
	if req.PurchaseDate != nil {
		investment.PurchaseDate = *req.PurchaseDate
	}
	if req.Notes != nil {
		investment.Notes = *req.Notes
	}

	if err := s.store.CreateInvestment(r.Context(), investment); err != nil {
		if errors.Is(err, store.ErrDuplicateEntry) {
			writeError(w, http.StatusConflict, "an investment for this symbol already exists")
			return
		}
		writeStoreError(w, "create investment", err)
		return
	}
	writeJSON(w, http.StatusCreated, investment)
}

// ListInvestments returns all of the caller's holdings.
func (s *FinanceService) ListInvestments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	investments, err := s.store.ListInvestments(r.Context(), claims.UserID)
	if err != nil {
		writeStoreError(w, "list investments", err)
		return
	}
	if investments == nil {
		investments = []*model.Investment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"investments": investments})
}

// GetInvestment fetches one holding owned by the caller.
func (s *FinanceService) GetInvestment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	investment, err := s.store.GetInvestment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get investment", err)
		return
	}
	if investment.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, investment)
}

// UpdateInvestment applies partial updates to a holding. The symbol is
// immutable; to move a position to a new symbol, delete and recreate it.
func (s *FinanceService) UpdateInvestment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	investment, err := s.store.GetInvestment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get investment", err)
		return
	}
	if investment.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.Symbol != nil && strings.ToUpper(strings.TrimSpace(*req.Symbol)) != investment.Symbol {
		fields["symbol"] = "symbol cannot be changed"
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		fields["quantity"] = "quantity must not be negative"
	}
	if req.PurchasePrice != nil && *req.PurchasePrice < 0 {
		fields["purchasePrice"] = "purchase price must not be negative"
	}
	if req.CurrentPrice != nil && *req.CurrentPrice < 0 {
		fields["currentPrice"] = "current price must not be negative"
	}
	if req.AssetType != nil {
		if _, valid := parseAssetType(*req.AssetType); !valid {
			fields["assetType"] = "assetType must be one of stock, bond, real_estate, crypto, other"
		}
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		investment.Name = strings.TrimSpace(*req.Name)
	}
	if req.AssetType != nil {
		investment.AssetType = model.AssetType(*req.AssetType)
	}
	if req.Quantity != nil {
		investment.Quantity = *req.Quantity
	}
	if req.PurchasePrice != nil {
		investment.PurchasePrice = *req.PurchasePrice
	}
	if req.CurrentPrice != nil {
		investment.CurrentPrice = *req.CurrentPrice
	}
	if req.PurchaseDate != nil {
		investment.PurchaseDate = *req.PurchaseDate
	}
	if req.Notes != nil {
		investment.Notes = *req.Notes
	}
	investment.UpdatedAt = time.Now()

	if err := s.store.UpdateInvestment(r.Context(), investment); err != nil {
		writeStoreError(w, "update investment", err)
		return
	}
	writeJSON(w, http.StatusOK, investment)
}

// DeleteInvestment closes a position.
func (s *FinanceService) DeleteInvestment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	investmentID := mux.Vars(r)["id"]
	investment, err := s.store.GetInvestment(r.Context(), investmentID)
	if err != nil {
		writeStoreError(w, "get investment", err)
		return
	}
	if investment.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.store.DeleteInvestment(r.Context(), investmentID); err != nil {
		writeStoreError(w, "delete investment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "investment deleted"})
}

// RefreshInvestmentPrices pulls a current quote for every holding and
// stores the new prices. Individual quote failures are logged and skipped
// so one bad symbol does not fail the whole refresh.
func (s *FinanceService) RefreshInvestmentPrices(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	investments, err := s.store.ListInvestments(r.Context(), claims.UserID)
	if err != nil {
		writeStoreError(w, "list investments", err)
		return
	}

	updated := 0
	for _, investment := range investments {
		quote, err := s.prices.GetQuote(r.Context(), investment.Symbol)
		if err != nil {
			log.Printf("[Market] failed to quote %s: %v", investment.Symbol, err)
			continue
		}
		investment.CurrentPrice = quote.Price
		investment.UpdatedAt = time.Now()
		if err := s.store.UpdateInvestment(r.Context(), investment); err != nil {
			log.Printf("[Market] failed to store price for %s: %v", investment.Symbol, err)
			continue
		}
		updated++
	}

	if investments == nil {
		investments = []*model.Investment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"investments": investments,
		"updated":     updated,
	})
}

// GetQuote returns the current mock quote for a symbol.
func (s *FinanceService) GetQuote(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	quote, err := s.prices.GetQuote(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid symbol")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
