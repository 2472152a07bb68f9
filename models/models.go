package models

// All lists every model handled by AutoMigrate, parents before children.
func All() []interface{} {
	return []interface{}{
		&BeanStock{},
		&RoastProfile{},
		&Order{},
		&OrderItem{},
		&CartItem{},
		&CheckoutDraft{},
		&UserAnswer{},
		&AdminUser{},
	}
}
