package model

import "time"

// User is the identity record that owns every other document in the system.
// PasswordHash is a bcrypt hash; plaintext passwords are never stored.
type User struct {
	ID           string    `json:"id" firestore:"Id"`
	Email        string    `json:"email" firestore:"Email"`
	Name         string    `json:"name" firestore:"Name"`
	PasswordHash string    `json:"-" firestore:"PasswordHash"`
	Bio          string    `json:"bio,omitempty" firestore:"Bio"`
	Profession   string    `json:"profession,omitempty" firestore:"Profession"`
	Phone        string    `json:"phone,omitempty" firestore:"Phone"`
	Currency     string    `json:"currency" firestore:"Currency"`
	CreatedAt    time.Time `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"UpdatedAt"`
}
