package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/recommender"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"gorm.io/gorm"
)

type Submission struct {
	ID       string `json:"id,omitempty"`
	DeviceID string `json:"deviceId"`
	recommender.Result
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type RecommendService struct {
	DB        *gorm.DB
	Menu      MenuSource
	Inventory *InventoryService
}

// Catalog assembles the scoring pool from the live menu and stock levels.
func (s *RecommendService) Catalog(ctx context.Context) ([]recommender.Bean, bool) {
	var menu []recommender.Bean
	var fetchErr error

	if s.Menu == nil {
		fetchErr = ErrNotConfigured
	} else if list, err := s.Menu.ListMenu(ctx, ListQuery{}); err != nil {
		utils.ErrorLogger.Errorf("recommender menu fetch: %v", err)
		fetchErr = err
	} else {
		for _, item := range list.Contents {
			menu = append(menu, item.Bean())
		}
	}

	var stock map[string]int
	if s.Inventory != nil {
		m, err := s.Inventory.StockMap(ctx)
		if err != nil {
			utils.ErrorLogger.Errorf("recommender stock read: %v", err)
		} else {
			stock = m
		}
	}

	return recommender.SelectCatalog(menu, fetchErr, stock)
}

// Submit scores answers and stores the pair. A failed insert is logged and the
// result is still returned, without an id.
func (s *RecommendService) Submit(ctx context.Context, deviceID string, answers recommender.Answers) (*Submission, error) {
	if err := answers.Validate(); err != nil {
		return nil, err
	}

	beans, fallback := s.Catalog(ctx)
	result, err := recommender.Recommend(answers, beans, fallback)
	if err != nil {
		return nil, err
	}

	sub := &Submission{DeviceID: deviceID, Result: result}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	record := models.UserAnswer{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		Answers:    answers,
		ResultBean: result.Primary.ID,
		ResultJSON: string(raw),
	}
	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		utils.ErrorLogger.Errorf("store recommender answer: %v", err)
		return sub, nil
	}

	sub.ID = record.ID
	sub.CreatedAt = &record.CreatedAt
	return sub, nil
}

func (s *RecommendService) Latest(ctx context.Context, deviceID string) (*Submission, error) {
	var record models.UserAnswer
	err := s.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at desc").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest answer: %w", err)
	}

	var result recommender.Result
	if err := json.Unmarshal([]byte(record.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}
	return &Submission{ID: record.ID, DeviceID: record.DeviceID, Result: result, CreatedAt: &record.CreatedAt}, nil
}
