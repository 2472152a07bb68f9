package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kento-cell/MyHobbyCoffee/models"
	"gorm.io/gorm"
)

// RequiredGrams is the green-bean weight needed to roast qty bags of gram
// grams at the given loss rate. The epsilon keeps 200*1.12 at 224.
func RequiredGrams(gram, qty int, lossRate float64) int {
	if gram <= 0 || qty <= 0 {
		return 0
	}
	return int(math.Ceil(float64(gram*qty)*(1+lossRate) - 1e-9))
}

type InventoryService struct {
	DB *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{DB: db}
}

func (s *InventoryService) List(ctx context.Context) ([]models.BeanStock, error) {
	var stocks []models.BeanStock
	if err := s.DB.WithContext(ctx).Order("bean_name asc").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("list bean stocks: %w", err)
	}
	return stocks, nil
}

// StockMap returns stock grams keyed by bean name. An empty map means no stock rows exist.
func (s *InventoryService) StockMap(ctx context.Context) (map[string]int, error) {
	stocks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]int, len(stocks))
	for _, st := range stocks {
		m[st.BeanName] = st.StockGrams
	}
	return m, nil
}

func (s *InventoryService) Find(ctx context.Context, beanName string) (*models.BeanStock, error) {
	var stock models.BeanStock
	err := s.DB.WithContext(ctx).Where("bean_name = ?", beanName).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find bean stock: %w", err)
	}
	return &stock, nil
}

type AdjustRequest struct {
	BeanName  string   `json:"beanName"`
	DeltaGram *int     `json:"deltaGram"`
	LossRate  *float64 `json:"lossRate"`
}

func (r AdjustRequest) Validate() error {
	if strings.TrimSpace(r.BeanName) == "" || r.DeltaGram == nil {
		return errors.New("beanName and deltaGram are required")
	}
	if r.LossRate != nil && (*r.LossRate < 0 || *r.LossRate >= 1) {
		return ErrInvalidLossRate
	}
	return nil
}

// Adjust applies a stock delta, creating the row if needed. The result may not go below zero.
func (s *InventoryService) Adjust(ctx context.Context, req AdjustRequest) (*models.BeanStock, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.BeanName)

	var result models.BeanStock
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock models.BeanStock
		err := tx.Where("bean_name = ?", name).First(&stock).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			stock = models.BeanStock{BeanName: name, LossRate: models.DefaultLossRate}
		case err != nil:
			return fmt.Errorf("find bean stock: %w", err)
		}

		next := stock.StockGrams + *req.DeltaGram
		if next < 0 {
			return ErrNegativeStock
		}
		stock.StockGrams = next
		if req.LossRate != nil {
			stock.LossRate = *req.LossRate
		}

		if err := tx.Save(&stock).Error; err != nil {
			return fmt.Errorf("save bean stock: %w", err)
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
