package cart

import (
	"context"
	"fmt"

	"github.com/kento-cell/MyHobbyCoffee/models"
	"gorm.io/gorm"
)

// Store keeps carts in cart_items, one row per line, keyed by device id.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Load(ctx context.Context, deviceID string) (*Cart, error) {
	var rows []models.CartItem
	if err := s.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("position asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Item{
			LineID:        r.LineID,
			ProductID:     r.ProductID,
			Title:         r.Title,
			Price:         r.Price,
			Image:         r.Image,
			SelectedGram:  r.SelectedGram,
			BaseGram:      r.BaseGram,
			SelectedRoast: r.SelectedRoast,
			Qty:           r.Qty,
		})
	}
	return New(items), nil
}

// Save replaces the stored lines of deviceID with the cart contents.
func (s *Store) Save(ctx context.Context, deviceID string, c *Cart) error {
	items := c.Items()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		rows := make([]models.CartItem, 0, len(items))
		for i, it := range items {
			rows = append(rows, models.CartItem{
				DeviceID:      deviceID,
				Position:      i,
				LineID:        it.LineID,
				ProductID:     it.ProductID,
				Title:         it.Title,
				Price:         it.Price,
				Image:         it.Image,
				SelectedGram:  it.SelectedGram,
				BaseGram:      it.BaseGram,
				SelectedRoast: it.SelectedRoast,
				Qty:           it.Qty,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		return nil
	})
}

// Persist wires c so every mutation is written back for deviceID.
// Write errors go to onErr.
func (s *Store) Persist(ctx context.Context, deviceID string, c *Cart, onErr func(error)) func() {
	return c.Subscribe(func(_ []Item) {
		if err := s.Save(ctx, deviceID, c); err != nil && onErr != nil {
			onErr(err)
		}
	})
}
