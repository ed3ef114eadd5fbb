package models

import "time"

// Client is referenced (never owned) by sales, locks, picking lists and cannister
// issuances; deletion is blocked while any reference exists.
type Client struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:200;not null;unique"`
	Email     *string `gorm:"size:254"`
	Phone     *string `gorm:"size:20"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
