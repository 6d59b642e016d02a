package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fintrackr/backend/internal/model"
	"github.com/gorilla/mux"
)

type expenseRequest struct {
	Amount        *float64   `json:"amount"`
	Description   *string    `json:"description"`
	CategoryID    *string    `json:"categoryId"`
	PaymentMethod *string    `json:"paymentMethod"`
	Date          *time.Time `json:"date"`
}

type incomeRequest struct {
	Amount      *float64   `json:"amount"`
	Description *string    `json:"description"`
	CategoryID  *string    `json:"categoryId"`
	Source      *string    `json:"source"`
	Date        *time.Time `json:"date"`
}

// pageParams reads pageSize/pageToken from the query string.
func pageParams(r *http.Request) (int32, string) {
	pageSize := int32(0)
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageSize = int32(n)
		}
	}
	return pageSize, r.URL.Query().Get("pageToken")
}

// Expense handlers

// CreateExpense records a new expense for the authenticated user. The
// category must exist and be visible to the caller; the date defaults to
// now.
func (s *FinanceService) CreateExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.Amount == nil || *req.Amount <= 0 {
		fields["amount"] = "amount must be greater than zero"
	}
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		fields["description"] = "description is required"
	}
	if req.CategoryID == nil || *req.CategoryID == "" {
		fields["categoryId"] = "categoryId is required"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	category, err := s.visibleCategory(r.Context(), claims.UserID, *req.CategoryID)
	if err != nil {
		writeStoreError(w, "get category", err)
		return
	}
	if category.Type != model.CategoryTypeExpense {
		writeValidationError(w, map[string]string{"categoryId": "category is not an expense category"})
		return
	}

	now := time.Now()
	expense := &model.Expense{
		UserID:      claims.UserID,
		Amount:      *req.Amount,
		Description: strings.TrimSpace(*req.Description),
		CategoryID:  *req.CategoryID,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}

	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		writeStoreError(w, "create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// ListExpenses returns the caller's expenses, newest first.
func (s *FinanceService) ListExpenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	pageSize, pageToken := pageParams(r)
	expenses, nextToken, err := s.store.ListExpenses(r.Context(), claims.UserID, pageSize, pageToken)
	if err != nil {
		writeStoreError(w, "list expenses", err)
		return
	}
	if expenses == nil {
		expenses = []*model.Expense{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"expenses":      expenses,
		"nextPageToken": nextToken,
	})
}

// GetExpense fetches one expense. Another user's expense is reported as not
// found.
func (s *FinanceService) GetExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get expense", err)
		return
	}
	if expense.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// UpdateExpense applies partial updates. The owner is immutable.
func (s *FinanceService) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	expense, err := s.store.GetExpense(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get expense", err)
		return
	}
	if expense.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		writeValidationError(w, map[string]string{"amount": "amount must be greater than zero"})
		return
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		writeValidationError(w, map[string]string{"description": "description must not be empty"})
		return
	}
	if req.CategoryID != nil {
		category, err := s.visibleCategory(r.Context(), claims.UserID, *req.CategoryID)
		if err != nil {
			writeStoreError(w, "get category", err)
			return
		}
		if category.Type != model.CategoryTypeExpense {
			writeValidationError(w, map[string]string{"categoryId": "category is not an expense category"})
			return
		}
		expense.CategoryID = *req.CategoryID
	}

	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Description != nil {
		expense.Description = strings.TrimSpace(*req.Description)
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	expense.UpdatedAt = time.Now()

	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		writeStoreError(w, "update expense", err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// DeleteExpense removes one expense owned by the caller.
func (s *FinanceService) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	expenseID := mux.Vars(r)["id"]
	expense, err := s.store.GetExpense(r.Context(), expenseID)
	if err != nil {
		writeStoreError(w, "get expense", err)
		return
	}
	if expense.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), expenseID); err != nil {
		writeStoreError(w, "delete expense", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

// Income handlers

// CreateIncome records a new income entry for the authenticated user.
func (s *FinanceService) CreateIncome(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.Amount == nil || *req.Amount <= 0 {
		fields["amount"] = "amount must be greater than zero"
	}
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		fields["description"] = "description is required"
	}
	if req.CategoryID == nil || *req.CategoryID == "" {
		fields["categoryId"] = "categoryId is required"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	category, err := s.visibleCategory(r.Context(), claims.UserID, *req.CategoryID)
	if err != nil {
		writeStoreError(w, "get category", err)
		return
	}
	if category.Type != model.CategoryTypeIncome {
		writeValidationError(w, map[string]string{"categoryId": "category is not an income category"})
		return
	}

	now := time.Now()
	income := &model.Income{
		UserID:      claims.UserID,
		Amount:      *req.Amount,
		Description: strings.TrimSpace(*req.Description),
		CategoryID:  *req.CategoryID,
		Date:        now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Source != nil {
		income.Source = *req.Source
	}
	if req.Date != nil {
		income.Date = *req.Date
	}

	if err := s.store.CreateIncome(r.Context(), income); err != nil {
		writeStoreError(w, "create income", err)
		return
	}
	writeJSON(w, http.StatusCreated, income)
}

// ListIncomes returns the caller's income entries, newest first.
func (s *FinanceService) ListIncomes(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	pageSize, pageToken := pageParams(r)
	incomes, nextToken, err := s.store.ListIncomes(r.Context(), claims.UserID, pageSize, pageToken)
	if err != nil {
		writeStoreError(w, "list incomes", err)
		return
	}
	if incomes == nil {
		incomes = []*model.Income{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"income":        incomes,
		"nextPageToken": nextToken,
	})
}

// GetIncome fetches one income entry owned by the caller.
func (s *FinanceService) GetIncome(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	income, err := s.store.GetIncome(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get income", err)
		return
	}
	if income.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, income)
}

// UpdateIncome applies partial updates. The owner is immutable.
func (s *FinanceService) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	income, err := s.store.GetIncome(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get income", err)
		return
	}
	if income.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		writeValidationError(w, map[string]string{"amount": "amount must be greater than zero"})
		return
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		writeValidationError(w, map[string]string{"description": "description must not be empty"})
		return
	}
	if req.CategoryID != nil {
		category, err := s.visibleCategory(r.Context(), claims.UserID, *req.CategoryID)
		if err != nil {
			writeStoreError(w, "get category", err)
			return
		}
		if category.Type != model.CategoryTypeIncome {
			writeValidationError(w, map[string]string{"categoryId": "category is not an income category"})
			return
		}
		income.CategoryID = *req.CategoryID
	}

	if req.Amount != nil {
		income.Amount = *req.Amount
	}
	if req.Description != nil {
		income.Description = strings.TrimSpace(*req.Description)
	}
	if req.Source != nil {
		income.Source = *req.Source
	}
	if req.Date != nil {
		income.Date = *req.Date
	}
	income.UpdatedAt = time.Now()

	if err := s.store.UpdateIncome(r.Context(), income); err != nil {
		writeStoreError(w, "update income", err)
		return
	}
	writeJSON(w, http.StatusOK, income)
}

// DeleteIncome removes one income entry owned by the caller.
func (s *FinanceService) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	incomeID := mux.Vars(r)["id"]
	income, err := s.store.GetIncome(r.Context(), incomeID)
	if err != nil {
		writeStoreError(w, "get income", err)
		return
	}
	if income.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.store.DeleteIncome(r.Context(), incomeID); err != nil {
		writeStoreError(w, "delete income", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "income deleted"})
}
