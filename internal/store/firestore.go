package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/fintrackr/backend/internal/model"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names. userEmails and investmentSymbols are index
// collections whose document IDs enforce the uniqueness constraints the
// memory store can only check best-effort.
const (
	colUsers             = "users"
	colUserEmails        = "userEmails"
	colCategories        = "categories"
	colExpenses          = "expenses"
	colIncomes           = "incomes"
	colInvestments       = "investments"
	colInvestmentSymbols = "investmentSymbols"
	colNotifications     = "notifications"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// emailIndexDoc is the payload of a userEmails/{email} index document.
type emailIndexDoc struct {
	UserID string `firestore:"UserId"`
}

// symbolIndexDoc is the payload of an investmentSymbols/{userID_symbol}
// index document.
type symbolIndexDoc struct {
	InvestmentID string `firestore:"InvestmentId"`
}

func symbolIndexKey(userID, symbol string) string {
	return userID + "_" + symbol
}

// applyDatePagination orders a query newest-first with the document ID as
// tie-breaker and positions the cursor. Firestore composite cursors need
// the ordered field value, so the cursor document is fetched to recover its
// Date.
func (s *FirestoreStore) applyDatePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, err
		}
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1) // +1 to detect next page
	return query, nil
}

// countDocs counts the documents matched by a query.
func countDocs(ctx context.Context, query firestore.Query) (int, error) {
	it := query.Documents(ctx)
	defer it.Stop()

	count := 0
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// deleteMatching deletes every document matched by a query.
func deleteMatching(ctx context.Context, query firestore.Query) error {
	it := query.Documents(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return err
		}
	}
}

// User operations

// CreateUser hashes the password and writes the user and its email index
// document in one transaction. The index document ID is the normalized
// email, so duplicate registration loses the transaction instead of racing.
func (s *FirestoreStore) CreateUser(ctx context.Context, user *model.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = normalizeEmail(user.Email)
	user.PasswordHash = hash

	emailRef := s.client.Collection(colUserEmails).Doc(user.Email)
	userRef := s.client.Collection(colUsers).Doc(user.ID)

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(emailRef)
		if err == nil {
			return ErrEmailTaken
		}
		if !isNotFound(err) {
			return err
		}
		if err := tx.Set(emailRef, emailIndexDoc{UserID: user.ID}); err != nil {
			return err
		}
		return tx.Set(userRef, user)
	})
	if errors.Is(err, ErrEmailTaken) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection(colUsers).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	doc, err := s.client.Collection(colUserEmails).Doc(email).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	var index emailIndexDoc
	if err := doc.DataTo(&index); err != nil {
		return nil, fmt.Errorf("failed to parse email index: %w", err)
	}
	return s.GetUser(ctx, index.UserID)
}

func (s *FirestoreStore) UpdateUser(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	_, err := s.client.Collection(colUsers).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *FirestoreStore) UpdateUserPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = s.client.Collection(colUsers).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "PasswordHash", Value: hash},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteUser(ctx context.Context, userID string) error {
	userRef := s.client.Collection(colUsers).Doc(userID)
	doc, err := userRef.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return fmt.Errorf("failed to parse user: %w", err)
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(s.client.Collection(colUserEmails).Doc(user.Email)); err != nil {
			return err
		}
		return tx.Delete(userRef)
	})
}

// Category operations

func (s *FirestoreStore) CreateCategory(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	// Duplicate check is a query per user+type; the candidate set is small
	// and name comparison is case-insensitive, which Firestore cannot
	// express in a filter.
	if !category.IsDefault {
		docs, err := s.client.Collection(colCategories).
			Where("UserId", "==", category.UserID).
			Where("Type", "==", string(category.Type)).
			Documents(ctx).GetAll()
		if err != nil {
			return fmt.Errorf("failed to check category uniqueness: %w", err)
		}
		for _, doc := range docs {
			var existing model.Category
			if err := doc.DataTo(&existing); err != nil {
				return fmt.Errorf("failed to parse category: %w", err)
			}
			if !existing.IsDefault && strings.EqualFold(existing.Name, category.Name) {
				return ErrDuplicateEntry
			}
		}
	}

	_, err := s.client.Collection(colCategories).Doc(category.ID).Set(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	doc, err := s.client.Collection(colCategories).Doc(categoryID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	var category model.Category
	if err := doc.DataTo(&category); err != nil {
		return nil, fmt.Errorf("failed to parse category: %w", err)
	}
	return &category, nil
}

func (s *FirestoreStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	if !category.IsDefault {
		docs, err := s.client.Collection(colCategories).
			Where("UserId", "==", category.UserID).
			Where("Type", "==", string(category.Type)).
			Documents(ctx).GetAll()
		if err != nil {
			return fmt.Errorf("failed to check category uniqueness: %w", err)
		}
		for _, doc := range docs {
			if doc.Ref.ID == category.ID {
				continue
			}
			var existing model.Category
			if err := doc.DataTo(&existing); err != nil {
				return fmt.Errorf("failed to parse category: %w", err)
			}
			if !existing.IsDefault && strings.EqualFold(existing.Name, category.Name) {
				return ErrDuplicateEntry
			}
		}
	}

	_, err := s.client.Collection(colCategories).Doc(category.ID).Set(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := s.client.Collection(colCategories).Doc(categoryID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListCategories(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error) {
	// Firestore has no OR filter on these client versions, so defaults and
	// user categories are two queries merged client-side.
	defaultQuery := s.client.Collection(colCategories).Where("IsDefault", "==", true)
	userQuery := s.client.Collection(colCategories).Where("UserId", "==", userID)
	if categoryType != "" {
		defaultQuery = defaultQuery.Where("Type", "==", string(categoryType))
		userQuery = userQuery.Where("Type", "==", string(categoryType))
	}

	var result []*model.Category
	seen := make(map[string]bool)
	for _, query := range []firestore.Query{defaultQuery, userQuery} {
		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		for _, doc := range docs {
			if seen[doc.Ref.ID] {
				continue
			}
			seen[doc.Ref.ID] = true

			var category model.Category
			if err := doc.DataTo(&category); err != nil {
				return nil, fmt.Errorf("failed to parse category: %w", err)
			}
			result = append(result, &category)
		}
	}
	return result, nil
}

// Expense operations

func (s *FirestoreStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	_, err := s.client.Collection(colExpenses).Doc(expense.ID).Set(ctx, expense)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	doc, err := s.client.Collection(colExpenses).Doc(expenseID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	var expense model.Expense
	if err := doc.DataTo(&expense); err != nil {
		return nil, fmt.Errorf("failed to parse expense: %w", err)
	}
	return &expense, nil
}

func (s *FirestoreStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	_, err := s.client.Collection(colExpenses).Doc(expense.ID).Set(ctx, expense)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteExpense(ctx context.Context, expenseID string) error {
	_, err := s.client.Collection(colExpenses).Doc(expenseID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListExpenses(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Expense, string, error) {
	query := s.client.Collection(colExpenses).Where("UserId", "==", userID)
	query, err := s.applyDatePagination(ctx, query, colExpenses, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list expenses: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	expenses := make([]*model.Expense, 0, len(docs))
	for _, doc := range docs {
		var expense model.Expense
		if err := doc.DataTo(&expense); err != nil {
			return nil, "", fmt.Errorf("failed to parse expense: %w", err)
		}
		expenses = append(expenses, &expense)
	}
	return expenses, nextPageToken, nil
}

func (s *FirestoreStore) CountExpensesByCategory(ctx context.Context, userID, categoryID string) (int, error) {
	query := s.client.Collection(colExpenses).
		Where("UserId", "==", userID).
		Where("CategoryId", "==", categoryID)
	count, err := countDocs(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// Income operations

func (s *FirestoreStore) CreateIncome(ctx context.Context, income *model.Income) error {
	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	_, err := s.client.Collection(colIncomes).Doc(income.ID).Set(ctx, income)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetIncome(ctx context.Context, incomeID string) (*model.Income, error) {
	doc, err := s.client.Collection(colIncomes).Doc(incomeID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("income %s: %w", incomeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get income: %w", err)
	}

	var income model.Income
	if err := doc.DataTo(&income); err != nil {
		return nil, fmt.Errorf("failed to parse income: %w", err)
	}
	return &income, nil
}

func (s *FirestoreStore) UpdateIncome(ctx context.Context, income *model.Income) error {
	_, err := s.client.Collection(colIncomes).Doc(income.ID).Set(ctx, income)
	if err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteIncome(ctx context.Context, incomeID string) error {
	_, err := s.client.Collection(colIncomes).Doc(incomeID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListIncomes(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Income, string, error) {
	query := s.client.Collection(colIncomes).Where("UserId", "==", userID)
	query, err := s.applyDatePagination(ctx, query, colIncomes, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list incomes: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	incomes := make([]*model.Income, 0, len(docs))
	for _, doc := range docs {
		var income model.Income
		if err := doc.DataTo(&income); err != nil {
			return nil, "", fmt.Errorf("failed to parse income: %w", err)
		}
		incomes = append(incomes, &income)
	}
	return incomes, nextPageToken, nil
}

func (s *FirestoreStore) CountIncomesByCategory(ctx context.Context, userID, categoryID string) (int, error) {
	query := s.client.Collection(colIncomes).
		Where("UserId", "==", userID).
		Where("CategoryId", "==", categoryID)
	count, err := countDocs(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count incomes: %w", err)
	}
	return count, nil
}

// Investment operations

// CreateInvestment writes the holding and its symbol index document in one
// transaction so the (user, symbol) constraint holds under concurrency.
func (s *FirestoreStore) CreateInvestment(ctx context.Context, investment *model.Investment) error {
	if investment.ID == "" {
		investment.ID = uuid.New().String()
	}

	indexRef := s.client.Collection(colInvestmentSymbols).Doc(symbolIndexKey(investment.UserID, investment.Symbol))
	invRef := s.client.Collection(colInvestments).Doc(investment.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(indexRef)
		if err == nil {
			return ErrDuplicateEntry
		}
		if !isNotFound(err) {
			return err
		}
		if err := tx.Set(indexRef, symbolIndexDoc{InvestmentID: investment.ID}); err != nil {
			return err
		}
		return tx.Set(invRef, investment)
	})
	if errors.Is(err, ErrDuplicateEntry) {
		return ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetInvestment(ctx context.Context, investmentID string) (*model.Investment, error) {
	doc, err := s.client.Collection(colInvestments).Doc(investmentID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("investment %s: %w", investmentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	var investment model.Investment
	if err := doc.DataTo(&investment); err != nil {
		return nil, fmt.Errorf("failed to parse investment: %w", err)
	}
	return &investment, nil
}

func (s *FirestoreStore) UpdateInvestment(ctx context.Context, investment *model.Investment) error {
	// Symbol is immutable after creation, so the index document needs no
	// maintenance here.
	_, err := s.client.Collection(colInvestments).Doc(investment.ID).Set(ctx, investment)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteInvestment(ctx context.Context, investmentID string) error {
	investment, err := s.GetInvestment(ctx, investmentID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	indexRef := s.client.Collection(colInvestmentSymbols).Doc(symbolIndexKey(investment.UserID, investment.Symbol))
	invRef := s.client.Collection(colInvestments).Doc(investmentID)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(indexRef); err != nil {
			return err
		}
		return tx.Delete(invRef)
	})
}

func (s *FirestoreStore) ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error) {
	docs, err := s.client.Collection(colInvestments).
		Where("UserId", "==", userID).
		OrderBy("Symbol", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	investments := make([]*model.Investment, 0, len(docs))
	for _, doc := range docs {
		var investment model.Investment
		if err := doc.DataTo(&investment); err != nil {
			return nil, fmt.Errorf("failed to parse investment: %w", err)
		}
		investments = append(investments, &investment)
	}
	return investments, nil
}

// Notification operations

func (s *FirestoreStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	_, err := s.client.Collection(colNotifications).Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetNotification(ctx context.Context, notificationID string) (*model.Notification, error) {
	doc, err := s.client.Collection(colNotifications).Doc(notificationID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	var notification model.Notification
	if err := doc.DataTo(&notification); err != nil {
		return nil, fmt.Errorf("failed to parse notification: %w", err)
	}
	return &notification, nil
}

func (s *FirestoreStore) UpdateNotification(ctx context.Context, notification *model.Notification) error {
	_, err := s.client.Collection(colNotifications).Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteNotification(ctx context.Context, notificationID string) error {
	_, err := s.client.Collection(colNotifications).Doc(notificationID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListNotifications(ctx context.Context, userID string, unprocessedOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error) {
	query := s.client.Collection(colNotifications).Where("UserId", "==", userID)
	if unprocessedOnly {
		query = query.Where("Status", "==", string(model.NotificationUnprocessed))
	}

	query, err := s.applyDatePagination(ctx, query, colNotifications, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list notifications: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	notifications := make([]*model.Notification, 0, len(docs))
	for _, doc := range docs {
		var notification model.Notification
		if err := doc.DataTo(&notification); err != nil {
			return nil, "", fmt.Errorf("failed to parse notification: %w", err)
		}
		notifications = append(notifications, &notification)
	}
	return notifications, nextPageToken, nil
}

// DeleteUserData removes every document owned by the user across all
// collections, including the investment symbol index entries.

func (s *FirestoreStore) DeleteUserData(ctx context.Context, userID string) error {
	investments, err := s.ListInvestments(ctx, userID)
	if err != nil {
		return err
	}
	for _, investment := range investments {
		indexRef := s.client.Collection(colInvestmentSymbols).Doc(symbolIndexKey(userID, investment.Symbol))
		if _, err := indexRef.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete symbol index: %w", err)
		}
	}

	for _, collection := range []string{colExpenses, colIncomes, colInvestments, colNotifications} {
		query := s.client.Collection(collection).Where("UserId", "==", userID)
		if err := deleteMatching(ctx, query); err != nil {
			return fmt.Errorf("failed to purge %s: %w", collection, err)
		}
	}

	// User categories only; shared defaults stay.
	query := s.client.Collection(colCategories).
		Where("UserId", "==", userID).
		Where("IsDefault", "==", false)
	if err := deleteMatching(ctx, query); err != nil {
		return fmt.Errorf("failed to purge categories: %w", err)
	}
	return nil
}
