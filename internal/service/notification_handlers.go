package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fintrackr/backend/internal/model"
	"github.com/gorilla/mux"
)

type createNotificationRequest struct {
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	Merchant string     `json:"merchant"`
	Amount   float64    `json:"amount"`
	Date     *time.Time `json:"date"`
}

type applyNotificationRequest struct {
	Type        string   `json:"type"`
	CategoryID  string   `json:"categoryId"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
}

// CreateNotification records an inbound signal (e.g. a detected bank
// transaction) in the unprocessed state.
func (s *FinanceService) CreateNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if req.Amount <= 0 {
		fields["amount"] = "amount must be greater than zero"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	now := time.Now()
	notification := &model.Notification{
		UserID:    claims.UserID,
		Title:     strings.TrimSpace(req.Title),
		Message:   req.Message,
		Merchant:  req.Merchant,
		Amount:    req.Amount,
		Status:    model.NotificationUnprocessed,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Date != nil {
		notification.Date = *req.Date
	}

	if err := s.store.CreateNotification(r.Context(), notification); err != nil {
		writeStoreError(w, "create notification", err)
		return
	}
	writeJSON(w, http.StatusCreated, notification)
}

// ListNotifications returns the caller's notifications, newest first. Pass
// unprocessedOnly=true to see only the pending ones.
func (s *FinanceService) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	unprocessedOnly := r.URL.Query().Get("unprocessedOnly") == "true"
	pageSize, pageToken := pageParams(r)

	notifications, nextToken, err := s.store.ListNotifications(r.Context(), claims.UserID, unprocessedOnly, pageSize, pageToken)
	if err != nil {
		writeStoreError(w, "list notifications", err)
		return
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"nextPageToken": nextToken,
	})
}

// GetNotification fetches one notification owned by the caller.
func (s *FinanceService) GetNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	notification, err := s.store.GetNotification(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get notification", err)
		return
	}
	if notification.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

// DeleteNotification removes one notification owned by the caller.
func (s *FinanceService) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	notificationID := mux.Vars(r)["id"]
	notification, err := s.store.GetNotification(r.Context(), notificationID)
	if err != nil {
		writeStoreError(w, "get notification", err)
		return
	}
	if notification.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.store.DeleteNotification(r.Context(), notificationID); err != nil {
		writeStoreError(w, "delete notification", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}

// generatedDescription builds the ledger description for a transaction
// created from a notification.
func generatedDescription(n *model.Notification) string {
	merchant := normalizeMerchant(n.Merchant)
	if merchant == "" {
		merchant = normalizeMerchant(n.Title)
	}
	if merchant == "" {
		merchant = "Detected transaction"
	}
	return fmt.Sprintf("%s (auto-detected)", merchant)
}

// ApplyNotification converts an unprocessed notification into an expense or
// income, links the created record, and marks the notification applied.
// Both apply and ignore are terminal: a processed notification is rejected
// with a conflict, whichever transition is attempted next.
func (s *FinanceService) ApplyNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	notification, err := s.store.GetNotification(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get notification", err)
		return
	}
	if notification.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if notification.Processed() {
		writeError(w, http.StatusConflict, "notification already processed")
		return
	}

	var req applyNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transactionType := model.TransactionType(req.Type)
	if transactionType != model.TransactionTypeExpense && transactionType != model.TransactionTypeIncome {
		writeValidationError(w, map[string]string{"type": "type must be expense or income"})
		return
	}
	if req.CategoryID == "" {
		writeValidationError(w, map[string]string{"categoryId": "categoryId is required"})
		return
	}

	amount := notification.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		writeValidationError(w, map[string]string{"amount": "amount must be greater than zero"})
		return
	}

	category, err := s.visibleCategory(r.Context(), claims.UserID, req.CategoryID)
	if err != nil {
		writeStoreError(w, "get category", err)
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = generatedDescription(notification)
	}

	now := time.Now()
	var transactionID string
	var created interface{}

	// The transaction and the notification flip are independent document
	// writes; there is no cross-collection atomicity. A failure between
	// them leaves the notification unprocessed, which is safe to retry.
	switch transactionType {
	case model.TransactionTypeExpense:
		if category.Type != model.CategoryTypeExpense {
			writeValidationError(w, map[string]string{"categoryId": "category is not an expense category"})
			return
		}
		expense := &model.Expense{
			UserID:      claims.UserID,
			Amount:      amount,
			Description: description,
			CategoryID:  category.ID,
			Date:        notification.Date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.CreateExpense(r.Context(), expense); err != nil {
			writeStoreError(w, "create expense", err)
			return
		}
		transactionID = expense.ID
		created = expense

	case model.TransactionTypeIncome:
		if category.Type != model.CategoryTypeIncome {
			writeValidationError(w, map[string]string{"categoryId": "category is not an income category"})
			return
		}
		income := &model.Income{
			UserID:      claims.UserID,
			Amount:      amount,
			Description: description,
			CategoryID:  category.ID,
			Date:        notification.Date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.CreateIncome(r.Context(), income); err != nil {
			writeStoreError(w, "create income", err)
			return
		}
		transactionID = income.ID
		created = income
	}

	notification.Status = model.NotificationApplied
	notification.TransactionType = transactionType
	notification.TransactionID = transactionID
	notification.UpdatedAt = now

	if err := s.store.UpdateNotification(r.Context(), notification); err != nil {
		log.Printf("[NotificationProcessor] transaction %s created but notification %s not marked: %v",
			transactionID, notification.ID, err)
		writeStoreError(w, "update notification", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction":  created,
		"notification": notification,
	})
}

// IgnoreNotification dismisses an unprocessed notification without creating
// a transaction. The transition is terminal.
func (s *FinanceService) IgnoreNotification(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	notification, err := s.store.GetNotification(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, "get notification", err)
		return
	}
	if notification.UserID != claims.UserID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if notification.Processed() {
		writeError(w, http.StatusConflict, "notification already processed")
		return
	}

	notification.Status = model.NotificationIgnored
	notification.UpdatedAt = time.Now()

	if err := s.store.UpdateNotification(r.Context(), notification); err != nil {
		writeStoreError(w, "update notification", err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}
