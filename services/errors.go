package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfigured     = errors.New("not configured")
	ErrNotFound          = errors.New("not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("在庫不足です")
	ErrNegativeStock     = errors.New("stock cannot be negative")
	ErrInvalidLossRate   = errors.New("lossRate must be between 0 and 1")
	ErrEmptyCheckout     = errors.New("no items to checkout")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
)

// Shortage describes one bean whose stock cannot cover a checkout.
type Shortage struct {
	ProductID string `json:"productId"`
	BeanName  string `json:"beanName"`
	Required  int    `json:"requiredGram"`
	Available int    `json:"availableGram"`
}

func (s Shortage) String() string {
	return fmt.Sprintf("%s: 必要量 %dg / 在庫 %dg", s.BeanName, s.Required, s.Available)
}

// InsufficientStockError matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, s.String())
	}
	return ErrInsufficientStock.Error() + " " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
