package models

import "time"

// DraftLine is the priced line a checkout session was created for.
type DraftLine struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Roast       string `json:"roast"`
	Grams       int    `json:"gram"`
	Qty         int    `json:"qty"`
	UnitPrice   int64  `json:"unitPrice"`
}

// CheckoutDraft remembers the full line list of a pending Stripe session,
// since session metadata values are capped at 500 characters.
type CheckoutDraft struct {
	SessionID string      `gorm:"type:varchar(191);primaryKey" json:"session_id"`
	Lines     []DraftLine `gorm:"serializer:json;type:text" json:"lines"`
	CreatedAt time.Time   `json:"created_at"`
}
