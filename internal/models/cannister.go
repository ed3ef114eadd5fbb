package models

import "time"

// Cannister: bulk liquid stock, identified by batch number.
type Cannister struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	BatchNo   string `gorm:"size:100;not null;unique"`
	Stock     int64  `gorm:"not null;default:0"`
	Litres    string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
