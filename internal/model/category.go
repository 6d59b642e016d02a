package model

import "time"

// CategoryType tags a category as applying to expenses or incomes.
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

// Category is a named bucket for transactions. Default categories have an
// empty UserID and are visible to everyone; user categories are private.
// (Name, UserID, Type) must be unique among non-default categories.
type Category struct {
	ID            string       `json:"id" firestore:"Id"`
	UserID        string       `json:"userId,omitempty" firestore:"UserId"`
	Name          string       `json:"name" firestore:"Name"`
	Type          CategoryType `json:"type" firestore:"Type"`
	Icon          string       `json:"icon,omitempty" firestore:"Icon"`
	Color         string       `json:"color,omitempty" firestore:"Color"`
	MonthlyBudget float64      `json:"monthlyBudget,omitempty" firestore:"MonthlyBudget"`
	IsDefault     bool         `json:"isDefault" firestore:"IsDefault"`
	CreatedAt     time.Time    `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt     time.Time    `json:"updatedAt" firestore:"UpdatedAt"`
}
