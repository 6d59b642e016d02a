package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fintrackr/backend/internal/model"
	"github.com/fintrackr/backend/internal/store"
	"github.com/gorilla/mux"
)

type categoryRequest struct {
	Name          *string  `json:"name"`
	Type          *string  `json:"type"`
	Icon          *string  `json:"icon"`
	Color         *string  `json:"color"`
	MonthlyBudget *float64 `json:"monthlyBudget"`
}

func parseCategoryType(raw string) (model.CategoryType, bool) {
	switch model.CategoryType(raw) {
	case model.CategoryTypeExpense:
		return model.CategoryTypeExpense, true
	case model.CategoryTypeIncome:
		return model.CategoryTypeIncome, true
	}
	return "", false
}

// visibleCategory fetches a category and checks the caller may use it:
// their own, or a shared default. Another user's category is reported as
// not found so existence never leaks.
func (s *FinanceService) visibleCategory(ctx context.Context, userID, categoryID string) (*model.Category, error) {
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsDefault && category.UserID != userID {
		return nil, store.ErrNotFound
	}
	return category, nil
}

// ListCategories returns the shared defaults plus the caller's own,
// optionally filtered by type.
func (s *FinanceService) ListCategories(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var categoryType model.CategoryType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, valid := parseCategoryType(raw)
		if !valid {
			writeValidationError(w, map[string]string{"type": "type must be expense or income"})
			return
		}
		categoryType = parsed
	}

	categories, err := s.store.ListCategories(r.Context(), claims.UserID, categoryType)
	if err != nil {
		writeStoreError(w, "list categories", err)
		return
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategory creates a user-owned category. (name, owner, type) must be
// unique; the shared default namespace is exempt.
func (s *FinanceService) CreateCategory(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		fields["name"] = "name is required"
	}
	var categoryType model.CategoryType
	if req.Type == nil {
		fields["type"] = "type is required"
	} else {
		parsed, valid := parseCategoryType(*req.Type)
		if !valid {
			fields["type"] = "type must be expense or income"
		}
		categoryType = parsed
	}
	if req.MonthlyBudget != nil && *req.MonthlyBudget < 0 {
		fields["monthlyBudget"] = "monthly budget must not be negative"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	now := time.Now()
	category := &model.Category{
		UserID:    claims.UserID,
		Name:      strings.TrimSpace(*req.Name),
		Type:      categoryType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.MonthlyBudget != nil {
		category.MonthlyBudget = *req.MonthlyBudget
	}

	if err := s.store.CreateCategory(r.Context(), category); err != nil {
		if errors.Is(err, store.ErrDuplicateEntry) {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		writeStoreError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory applies partial updates to a user-owned category. Shared
// defaults cannot be edited through this endpoint.
func (s *FinanceService) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	category, err := s.store.GetCategory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get category", err)
		return
	}
	if category.IsDefault || category.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeValidationError(w, map[string]string{"name": "name must not be empty"})
		return
	}
	if req.Type != nil {
		// Changing the type would silently reclassify every transaction
		// referencing the category.
		writeValidationError(w, map[string]string{"type": "type cannot be changed"})
		return
	}
	if req.MonthlyBudget != nil && *req.MonthlyBudget < 0 {
		writeValidationError(w, map[string]string{"monthlyBudget": "monthly budget must not be negative"})
		return
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.MonthlyBudget != nil {
		category.MonthlyBudget = *req.MonthlyBudget
	}
	category.UpdatedAt = time.Now()

	if err := s.store.UpdateCategory(r.Context(), category); err != nil {
		if errors.Is(err, store.ErrDuplicateEntry) {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		writeStoreError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a user-owned category. A category still referenced
// by expenses or incomes cannot be deleted; the reference count check keeps
// ledger rows from pointing at nothing.
func (s *FinanceService) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	categoryID := mux.Vars(r)["id"]
	category, err := s.store.GetCategory(r.Context(), categoryID)
	if err != nil {
		writeStoreError(w, "get category", err)
		return
	}
	if category.IsDefault || category.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	expenseCount, err := s.store.CountExpensesByCategory(r.Context(), claims.UserID, categoryID)
	if err != nil {
		writeStoreError(w, "count expenses", err)
		return
	}
	incomeCount, err := s.store.CountIncomesByCategory(r.Context(), claims.UserID, categoryID)
	if err != nil {
		writeStoreError(w, "count incomes", err)
		return
	}
	if expenseCount+incomeCount > 0 {
		writeError(w, http.StatusConflict, "category is referenced by existing transactions")
		return
	}

	if err := s.store.DeleteCategory(r.Context(), categoryID); err != nil {
		writeStoreError(w, "delete category", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
