package models

import "time"

// PickingList: staged-for-fulfillment request. A staging list only, it does not touch
// any stock counter.
type PickingList struct {
	ID        uint      `gorm:"primaryKey"`
	Date      time.Time `gorm:"index;not null"`
	ClientID  *uint     `gorm:"index"`
	Client    *Client   `gorm:"constraint:OnDelete:RESTRICT"`
	Product   string    `gorm:"size:255;not null"`
	BatchNo   string    `gorm:"size:100;not null"`
	Quantity  int64     `gorm:"not null"`
	CreatedAt time.Time
}
