package services

import (
	"context"
	"sync"
	"time"

	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"gorm.io/gorm"
)

// A session can complete up to 24 hours after creation and Stripe retries the
// completion webhook for up to 3 days after that.
const DefaultDraftMaxAge = 24*time.Hour + 72*time.Hour

// DraftSweeper periodically removes checkout drafts whose sessions have expired.
type DraftSweeper struct {
	DB       *gorm.DB
	Interval time.Duration
	MaxAge   time.Duration
	Now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewDraftSweeper(db *gorm.DB) *DraftSweeper {
	return &DraftSweeper{
		DB:       db,
		Interval: time.Hour,
		MaxAge:   DefaultDraftMaxAge,
		Now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

func (s *DraftSweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.Sweep(context.Background()); err != nil {
					utils.ErrorLogger.Errorf("sweep checkout drafts: %v", err)
				}
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *DraftSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Sweep deletes drafts older than MaxAge and returns how many were removed.
func (s *DraftSweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.Now().Add(-s.MaxAge)
	res := s.DB.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.CheckoutDraft{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		utils.InfoLogger.Infof("removed %d expired checkout drafts", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
