package models

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order       Order  `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ProductID   string `gorm:"type:varchar(100)" json:"product_id"`
	ProductName string `gorm:"type:varchar(255);not null" json:"product_name"`
	Roast       string `gorm:"type:varchar(32)" json:"roast"`
	Grams       int    `gorm:"not null" json:"grams"`
	Qty         int    `gorm:"not null" json:"qty"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	Subtotal    int64  `gorm:"not null" json:"subtotal"`
}
