package models

import "time"

// Stocked: append-only restock ledger row.
type Stocked struct {
	ID          uint `gorm:"primaryKey"`
	DrugID      uint `gorm:"index;not null"`
	Drug        Drug `gorm:"constraint:OnDelete:RESTRICT"`
	StaffID     uint `gorm:"index;not null"`
	Staff       User `gorm:"foreignKey:StaffID;constraint:OnDelete:RESTRICT"`
	Supplier    string  `gorm:"size:200"`
	NumberAdded int64   `gorm:"not null"`
	Total       float64 `gorm:"not null"` // stock level right after this addition
	DateAdded   time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
}
