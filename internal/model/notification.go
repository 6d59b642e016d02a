package model

import "time"

// NotificationStatus is the processing state of a notification. Unprocessed
// notifications can transition to exactly one of Applied or Ignored; both
// are terminal.
type NotificationStatus string

const (
	NotificationUnprocessed NotificationStatus = "unprocessed"
	NotificationApplied     NotificationStatus = "applied"
	NotificationIgnored     NotificationStatus = "ignored"
)

// TransactionType selects which ledger entity a notification is applied to.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// Notification is an inbound signal (e.g. a detected bank transaction)
// waiting for the user to apply it to the ledger or dismiss it. When
// applied, TransactionID and TransactionType record the created entry.
type Notification struct {
	ID              string             `json:"id" firestore:"Id"`
	UserID          string             `json:"userId" firestore:"UserId"`
	Title           string             `json:"title" firestore:"Title"`
	Message         string             `json:"message,omitempty" firestore:"Message"`
	Merchant        string             `json:"merchant,omitempty" firestore:"Merchant"`
	Amount          float64            `json:"amount" firestore:"Amount"`
	Status          NotificationStatus `json:"status" firestore:"Status"`
	TransactionType TransactionType    `json:"transactionType,omitempty" firestore:"TransactionType"`
	TransactionID   string             `json:"transactionId,omitempty" firestore:"TransactionId"`
	Date            time.Time          `json:"date" firestore:"Date"`
	CreatedAt       time.Time          `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt       time.Time          `json:"updatedAt" firestore:"UpdatedAt"`
}

// Processed reports whether the notification has reached a terminal state.
func (n *Notification) Processed() bool {
	return n.Status != NotificationUnprocessed
}
