package models

import "time"

// IssuedItem: issuance ledger for marketing items. Item and Stock are snapshots of the
// item name and its level right after the issue.
type IssuedItem struct {
	ID             uint   `gorm:"primaryKey"`
	Item           string `gorm:"size:255;not null"`
	Stock          int64  `gorm:"not null"`
	IssuedTo       string `gorm:"size:255;not null"`
	QuantityIssued int64  `gorm:"not null"`
	IssuedByID     *uint  `gorm:"index"`
	IssuedBy       *User  `gorm:"foreignKey:IssuedByID;constraint:OnDelete:RESTRICT"`
	DateIssued     time.Time `gorm:"index;not null"`
	CreatedAt      time.Time
}
