package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultLossRate = 0.12

// BeanStock tracks green-bean inventory. BeanName joins against the CMS menu name.
type BeanStock struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BeanName      string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"bean_name"`
	StockGrams    int       `gorm:"not null;default:0" json:"stock_grams"`
	LossRate      float64   `gorm:"not null" json:"loss_rate"`
	CurrentStockG int       `gorm:"-" json:"current_stock_g"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (b *BeanStock) AfterFind(tx *gorm.DB) error {
	b.CurrentStockG = b.StockGrams
	return nil
}

func (b *BeanStock) AfterSave(tx *gorm.DB) error {
	b.CurrentStockG = b.StockGrams
	return nil
}
