package store

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/fintrackr/backend/internal/model"
)

// Sentinel errors shared by both store implementations. The service layer
// maps these onto the HTTP error taxonomy.
var (
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrInvalidPageToken = errors.New("invalid page token")
)

// Store defines the interface for all database operations used by the
// service. The backend (in-memory or Firestore) is chosen once at process
// start and injected; handlers never branch on which one they hold.
//
// Credential contract: CreateUser receives the plaintext password and every
// implementation is responsible for hashing it before anything is written.
// Plaintext never reaches storage on either path.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User, password string) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, userID, newPassword string) error
	DeleteUser(ctx context.Context, userID string) error

	// Category operations. ListCategories returns the shared default
	// categories plus the user's own.
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, categoryID string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategories(ctx context.Context, userID string, categoryType model.CategoryType) ([]*model.Category, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpenses(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Expense, string, error)
	CountExpensesByCategory(ctx context.Context, userID, categoryID string) (int, error)

	// Income operations
	CreateIncome(ctx context.Context, income *model.Income) error
	GetIncome(ctx context.Context, incomeID string) (*model.Income, error)
	UpdateIncome(ctx context.Context, income *model.Income) error
	DeleteIncome(ctx context.Context, incomeID string) error
	ListIncomes(ctx context.Context, userID string, pageSize int32, pageToken string) ([]*model.Income, string, error)
	CountIncomesByCategory(ctx context.Context, userID, categoryID string) (int, error)

	// Investment operations. (UserID, Symbol) is unique; CreateInvestment
	// returns ErrDuplicateEntry when the position already exists.
	CreateInvestment(ctx context.Context, investment *model.Investment) error
	GetInvestment(ctx context.Context, investmentID string) (*model.Investment, error)
	UpdateInvestment(ctx context.Context, investment *model.Investment) error
	DeleteInvestment(ctx context.Context, investmentID string) error
	ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error)

	// Notification operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotification(ctx context.Context, notificationID string) (*model.Notification, error)
	UpdateNotification(ctx context.Context, notification *model.Notification) error
	DeleteNotification(ctx context.Context, notificationID string) error
	ListNotifications(ctx context.Context, userID string, unprocessedOnly bool, pageSize int32, pageToken string) ([]*model.Notification, string, error)

	// DeleteUserData removes every document owned by the user. Used on
	// account deletion so no ledger row remains reachable.
	DeleteUserData(ctx context.Context, userID string) error
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidPageToken
	}
	return string(b), nil
}
