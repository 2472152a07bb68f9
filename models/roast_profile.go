package models

import "time"

type RoastProfile struct {
	ID             string `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name           string `gorm:"type:varchar(100);not null" json:"name"`
	TasteStartDays int    `gorm:"not null" json:"taste_start_days"`
	TasteEndDays   int    `gorm:"not null" json:"taste_end_days"`
	ExpiryDays     int    `gorm:"not null" json:"expiry_days"`
}

// Window returns the tasting window and expiry date for beans roasted at roastedAt.
func (p RoastProfile) Window(roastedAt time.Time) (start, end, expiry time.Time) {
	return roastedAt.AddDate(0, 0, p.TasteStartDays),
		roastedAt.AddDate(0, 0, p.TasteEndDays),
		roastedAt.AddDate(0, 0, p.ExpiryDays)
}

// DefaultRoastProfiles seeds roast_profiles on first start.
func DefaultRoastProfiles() []RoastProfile {
	return []RoastProfile{
		{ID: "light", Name: "Light roast", TasteStartDays: 5, TasteEndDays: 28, ExpiryDays: 90},
		{ID: "medium", Name: "Medium roast", TasteStartDays: 4, TasteEndDays: 21, ExpiryDays: 90},
		{ID: "dark", Name: "Dark roast", TasteStartDays: 3, TasteEndDays: 14, ExpiryDays: 60},
	}
}
