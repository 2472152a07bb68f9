package models

import "time"

// UserAnswer is a write-once record of a recommender submission.
type UserAnswer struct {
	ID         string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	DeviceID   string            `gorm:"type:varchar(64);index;not null" json:"device_id"`
	Answers    map[string]string `gorm:"serializer:json;type:text" json:"answers"`
	ResultBean string            `gorm:"type:varchar(255)" json:"result_bean"`
	ResultJSON string            `gorm:"type:text" json:"result_json"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}
