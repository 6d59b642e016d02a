package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fintrackr/backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryStore implements the Store interface with in-memory storage. It is
// the fallback backend used when Firestore is unreachable or for local
// development. Uniqueness checks are check-then-create under the store
// mutex, so they hold within a single process only.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[string]*model.User
	categories    map[string]*model.Category
	expenses      map[string]*model.Expense
	incomes       map[string]*model.Income
	investments   map[string]*model.Investment
	notifications map[string]*model.Notification
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*model.User),
		categories:    make(map[string]*model.Category),
		expenses:      make(map[string]*model.Expense),
		incomes:       make(map[string]*model.Income),
		investments:   make(map[string]*model.Investment),
		notifications: make(map[string]*model.Notification),
	}
}

// normalizeEmail lower-cases and trims an email so lookups are
// case-insensitive on both backends.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword produces the bcrypt hash stored in place of the plaintext.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// pageAfter applies cursor pagination to an already-ordered ID slice. The
// page token is the ID of the last element of the previous page.
func pageAfter(ids []string, pageSize int32, pageToken string) ([]string, string, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	start := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err != nil {
			return nil, "", err
		}
		start = len(ids)
		for i, id := range ids {
			if id == cursorID {
				start = i + 1
				break
			}
		}
	}
	ids = ids[start:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		ids = ids[:pageSize]
		nextToken = EncodePageToken(ids[pageSize-1])
	}
	return ids, nextToken, nil
}

// User operations

func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User, password string) error {
	// The memory path hashes the password itself so the fallback never
	// holds plaintext, matching the durable path's behavior.
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(user.Email)
	for _, existing := range m.users {
		if normalizeEmail(existing.Email) == email {
			return ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = email
	user.PasswordHash = hash

	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = normalizeEmail(email)
	for _, user := range m.users {
		if normalizeEmail(user.Email) == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	user.Email = normalizeEmail(user.Email)
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) UpdateUserPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	user.PasswordHash = hash
	return nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, userID)
	return nil
}

// Category operations

func (m *MemoryStore) CreateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// (name, owner, type) must be unique among non-default categories.
	// Default categories live in a shared namespace exempt from the check.
	if !category.IsDefault {
		for _, existing := range m.categories {
			if existing.IsDefault {
				continue
			}
			if existing.UserID == category.UserID &&
				existing.Type == category.Type &&
				strings.EqualFold(existing.Name, category.Name) {
				return ErrDuplicateEntry
			}
		}
	}

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.categories[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	return category, nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[category.ID]; !ok {
		return fmt.Errorf("category %s: %w", category.ID, ErrNotFound)
	}
	if !category.IsDefault {
		for id, existing := range m.categories {
			if id == category.ID || existing.IsDefault {
				continue
			}
			if existing.UserID == category.UserID &&
				existing.Type == category.Type &&
				strings.EqualFold(existing.Name, category.Name) {
				return ErrDuplicateEntry
			}
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.categories, categoryID)
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Category
	for _, category := range m.categories {
		if !category.IsDefault && category.UserID != userID {
			continue
		}
		if categoryType != "" && category.Type != categoryType {
			continue
		}
		result = append(result, category)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].IsDefault != result[j].IsDefault {
			return result[i].IsDefault
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Expense operations

func (m *MemoryStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) GetExpense(ctx context.Context, expenseID string) (*model.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expense, ok := m.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, ErrNotFound)
	}
	return expense, nil
}

func (m *MemoryStore) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[expense.ID]; !ok {
		return fmt.Errorf("expense %s: %w", expense.ID, ErrNotFound)
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.expenses, expenseID)
	return nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Expense, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []*model.Expense
	for _, expense := range m.expenses {
		if expense.UserID != userID {
			continue
		}
		matching = append(matching, expense)
	}

	// Newest first; document ID breaks date ties so the cursor is stable.
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].Date.Equal(matching[j].Date) {
			return matching[i].Date.After(matching[j].Date)
		}
		return matching[i].ID < matching[j].ID
	})

	ids := make([]string, 0, len(matching))
	byID := make(map[string]*model.Expense, len(matching))
	for _, expense := range matching {
		ids = append(ids, expense.ID)
		byID[expense.ID] = expense
	}

	pagedIDs, nextToken, err := pageAfter(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	result := make([]*model.Expense, 0, len(pagedIDs))
	for _, id := range pagedIDs {
		result = append(result, byID[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) CountExpensesByCategory(ctx context.Context, userID, categoryID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, expense := range m.expenses {
		if expense.UserID == userID && expense.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// Income operations

func (m *MemoryStore) CreateIncome(ctx context.Context, income *model.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	m.incomes[income.ID] = income
	return nil
}

func (m *MemoryStore) GetIncome(ctx context.Context, incomeID string) (*model.Income, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	income, ok := m.incomes[incomeID]
	if !ok {
		return nil, fmt.Errorf("income %s: %w", incomeID, ErrNotFound)
	}
	return income, nil
}

func (m *MemoryStore) UpdateIncome(ctx context.Context, income *model.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incomes[income.ID]; !ok {
		return fmt.Errorf("income %s: %w", income.ID, ErrNotFound)
	}
	m.incomes[income.ID] = income
	return nil
}

func (m *MemoryStore) DeleteIncome(ctx context.Context, incomeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.incomes, incomeID)
	return nil
}

func (m *MemoryStore) ListIncomes(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Income, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []*model.Income
	for _, income := range m.incomes {
		if income.UserID != userID {
			continue
		}
		matching = append(matching, income)
	}

	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].Date.Equal(matching[j].Date) {
			return matching[i].Date.After(matching[j].Date)
		}
		return matching[i].ID < matching[j].ID
	})

	ids := make([]string, 0, len(matching))
	byID := make(map[string]*model.Income, len(matching))
	for _, income := range matching {
		ids = append(ids, income.ID)
		byID[income.ID] = income
	}

	pagedIDs, nextToken, err := pageAfter(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	result := make([]*model.Income, 0, len(pagedIDs))
	for _, id := range pagedIDs {
		result = append(result, byID[id])
	}
	return result, nextToken, nil
}

func (m *MemoryStore) CountIncomesByCategory(ctx context.Context, userID, categoryID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, income := range m.incomes {
		if income.UserID == userID && income.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// Investment operations

func (m *MemoryStore) CreateInvestment(ctx context.Context, investment *model.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// One row per (user, symbol): a row is the entire position, not a lot.
	for _, existing := range m.investments {
		if existing.UserID == investment.UserID && existing.Symbol == investment.Symbol {
			return ErrDuplicateEntry
		}
	}

	if investment.ID == "" {
		investment.ID = uuid.New().String()
	}
	m.investments[investment.ID] = investment
	return nil
}

func (m *MemoryStore) GetInvestment(ctx context.Context, investmentID string) (*model.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	investment, ok := m.investments[investmentID]
	if !ok {
		return nil, fmt.Errorf("investment %s: %w", investmentID, ErrNotFound)
	}
	return investment, nil
}

func (m *MemoryStore) UpdateInvestment(ctx context.Context, investment *model.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.investments[investment.ID]; !ok {
		return fmt.Errorf("investment %s: %w", investment.ID, ErrNotFound)
	}
	m.investments[investment.ID] = investment
	return nil
}

func (m *MemoryStore) DeleteInvestment(ctx context.Context, investmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.investments, investmentID)
	return nil
}

func (m *MemoryStore) ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Investment
	for _, investment := range m.investments {
		if investment.UserID != userID {
			continue
		}
		result = append(result, investment)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(ctx context.Context, notification *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	m.notifications[notification.ID] = notification
	return nil
}

func (m *MemoryStore) GetNotification(ctx context.Context, notificationID string) (*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	notification, ok := m.notifications[notificationID]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}
	return notification, nil
}

func (m *MemoryStore) UpdateNotification(ctx context.Context, notification *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notifications[notification.ID]; !ok {
		return fmt.Errorf("notification %s: %w", notification.ID, ErrNotFound)
	}
	m.notifications[notification.ID] = notification
	return nil
}

func (m *MemoryStore) DeleteNotification(ctx context.Context, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.notifications, notificationID)
	return nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, userID string, unprocessedOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []*model.Notification
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unprocessedOnly && notification.Processed() {
			continue
		}
		matching = append(matching, notification)
	}

	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].Date.Equal(matching[j].Date) {
			return matching[i].Date.After(matching[j].Date)
		}
		return matching[i].ID < matching[j].ID
	})

	ids := make([]string, 0, len(matching))
	byID := make(map[string]*model.Notification, len(matching))
	for _, notification := range matching {
		ids = append(ids, notification.ID)
		byID[notification.ID] = notification
	}

	pagedIDs, nextToken, err := pageAfter(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	result := make([]*model.Notification, 0, len(pagedIDs))
	for _, id := range pagedIDs {
		result = append(result, byID[id])
	}
	return result, nextToken, nil
}

// DeleteUserData removes every document owned by the user.

func (m *MemoryStore) DeleteUserData(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, expense := range m.expenses {
		if expense.UserID == userID {
			delete(m.expenses, id)
		}
	}
	for id, income := range m.incomes {
		if income.UserID == userID {
			delete(m.incomes, id)
		}
	}
	for id, investment := range m.investments {
		if investment.UserID == userID {
			delete(m.investments, id)
		}
	}
	for id, notification := range m.notifications {
		if notification.UserID == userID {
			delete(m.notifications, id)
		}
	}
	for id, category := range m.categories {
		if !category.IsDefault && category.UserID == userID {
			delete(m.categories, id)
		}
	}
	return nil
}
