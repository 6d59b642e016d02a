package model

import "time"

// Expense is a single outgoing transaction owned by exactly one user.
// UserID is immutable after creation.
type Expense struct {
	ID            string    `json:"id" firestore:"Id"`
	UserID        string    `json:"userId" firestore:"UserId"`
	Amount        float64   `json:"amount" firestore:"Amount"`
	Description   string    `json:"description" firestore:"Description"`
	CategoryID    string    `json:"categoryId" firestore:"CategoryId"`
	PaymentMethod string    `json:"paymentMethod,omitempty" firestore:"PaymentMethod"`
	Date          time.Time `json:"date" firestore:"Date"`
	CreatedAt     time.Time `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"UpdatedAt"`
}

// Income is a single incoming transaction owned by exactly one user.
type Income struct {
	ID          string    `json:"id" firestore:"Id"`
	UserID      string    `json:"userId" firestore:"UserId"`
	Amount      float64   `json:"amount" firestore:"Amount"`
	Description string    `json:"description" firestore:"Description"`
	CategoryID  string    `json:"categoryId" firestore:"CategoryId"`
	Source      string    `json:"source,omitempty" firestore:"Source"`
	Date        time.Time `json:"date" firestore:"Date"`
	CreatedAt   time.Time `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"UpdatedAt"`
}
