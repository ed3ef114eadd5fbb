package models

import "time"

// Sale: immutable ledger row. DrugSold and BatchNo are snapshots taken at sale time,
// not live references, so history survives later edits to the drug record.
type Sale struct {
	ID                uint  `gorm:"primaryKey"`
	SellerID          *uint `gorm:"index"`
	Seller            *User `gorm:"foreignKey:SellerID;constraint:OnDelete:RESTRICT"`
	DrugSold          string `gorm:"size:200;not null;index"`
	BatchNo           string `gorm:"size:200;index"`
	ClientID          *uint  `gorm:"index"`
	Client            *Client `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity          float64 `gorm:"not null"`
	RemainingQuantity float64 `gorm:"not null"`
	DateSold          time.Time `gorm:"index;not null"`
	CreatedAt         time.Time
}
