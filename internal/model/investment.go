package model

import "time"

// AssetType classifies an investment holding for allocation reporting.
type AssetType string

const (
	AssetTypeStock      AssetType = "stock"
	AssetTypeBond       AssetType = "bond"
	AssetTypeRealEstate AssetType = "real_estate"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeOther      AssetType = "other"
)

// Investment is a user's entire position in one symbol, not an individual
// lot: (UserID, Symbol) is unique. Symbols are stored upper-cased.
// CurrentPrice is independently mutable to track market movement.
type Investment struct {
	ID            string    `json:"id" firestore:"Id"`
	UserID        string    `json:"userId" firestore:"UserId"`
	Symbol        string    `json:"symbol" firestore:"Symbol"`
	Name          string    `json:"name" firestore:"Name"`
	AssetType     AssetType `json:"assetType" firestore:"AssetType"`
	Quantity      float64   `json:"quantity" firestore:"Quantity"`
	PurchasePrice float64   `json:"purchasePrice" firestore:"PurchasePrice"`
	CurrentPrice  float64   `json:"currentPrice" firestore:"CurrentPrice"`
	PurchaseDate  time.Time `json:"purchaseDate" firestore:"PurchaseDate"`
	Notes         string    `json:"notes,omitempty" firestore:"Notes"`
	CreatedAt     time.Time `json:"createdAt" firestore:"CreatedAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"UpdatedAt"`
}
