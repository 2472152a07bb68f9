package models

import "time"

// CartItem is one persisted cart line, keyed by the anonymous device id.
type CartItem struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	DeviceID      string    `gorm:"type:varchar(64);index;not null" json:"-"`
	Position      int       `gorm:"not null" json:"-"`
	LineID        string    `gorm:"type:varchar(64);not null" json:"lineId"`
	ProductID     string    `gorm:"type:varchar(100);not null" json:"productId"`
	Title         string    `gorm:"type:varchar(255)" json:"title"`
	Price         int64     `gorm:"not null" json:"price"`
	Image         string    `gorm:"type:varchar(512)" json:"image"`
	SelectedGram  int       `gorm:"not null" json:"selectedGram"`
	BaseGram      int       `gorm:"not null" json:"baseGram"`
	SelectedRoast string    `gorm:"type:varchar(32)" json:"selectedRoast"`
	Qty           int       `gorm:"not null" json:"qty"`
	UpdatedAt     time.Time `json:"-"`
}
