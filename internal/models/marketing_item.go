package models

import "time"

// MarketingItem: non-drug promotional stock (pens, mugs, leaflets).
type MarketingItem struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Stock     int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
