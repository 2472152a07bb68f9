package models

import (
	"time"
)

const (
	OrderStatusPaid      = "paid"
	OrderStatusRoasting  = "roasting"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is a status an admin may set.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPaid, OrderStatusRoasting, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	StripeSessionID string      `gorm:"type:varchar(191);uniqueIndex;not null" json:"stripe_session_id"`
	Email           string      `gorm:"type:varchar(255)" json:"email"`
	TotalAmount     int64       `gorm:"not null;default:0" json:"total_amount"`
	Status          string      `gorm:"type:varchar(20);not null;default:'paid'" json:"status"`
	RoastID         *string     `gorm:"type:varchar(32)" json:"roast_id,omitempty"`
	RoastedAt       *time.Time  `json:"roasted_at"`
	TasteStart      *time.Time  `json:"taste_start"`
	TasteEnd        *time.Time  `json:"taste_end"`
	ExpiryDate      *time.Time  `json:"expiry_date"`
	CreatedAt       time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}
