package models

import "time"

// LockedProduct: a reservation. Once the row exists its drug reference is immutable;
// the row is either fulfilled into a Sale or cancelled back to stock, never edited.
type LockedProduct struct {
	ID         uint `gorm:"primaryKey"`
	DrugID     uint `gorm:"index;not null"`
	Drug       Drug `gorm:"constraint:OnDelete:RESTRICT"`
	LockedByID uint `gorm:"index;not null"`
	LockedBy   User `gorm:"foreignKey:LockedByID;constraint:OnDelete:RESTRICT"`
	ClientID   *uint   `gorm:"index"`
	Client     *Client `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity   float64 `gorm:"not null"`
	DateLocked time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}
