package models

import "time"

// Drug: stock is only ever mutated through the ledger package and never goes negative.
type Drug struct {
	ID            uint    `gorm:"primaryKey"`
	Name          string  `gorm:"size:200;not null;index"`
	BatchNo       string  `gorm:"size:200;not null;index"`
	Stock         float64 `gorm:"not null;default:0"`
	DosePack      float64 `gorm:"not null"`
	ExpiryDate    *time.Time
	ReorderLevel  float64 `gorm:"not null"`
	MeasurementID *uint
	Measurement   *Measurement `gorm:"constraint:OnDelete:RESTRICT"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
