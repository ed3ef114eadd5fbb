package models

import "time"

// Measurement: unit catalogue for drugs (tablets, ml, ...)
type Measurement struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"size:200;not null"`
	ExpiryDate time.Time `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
