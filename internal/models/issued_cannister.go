package models

import "time"

// IssuedCannister: issuance/return ledger for cannisters. Starts unreturned and makes a
// single transition to returned, which restores the cannister's stock.
type IssuedCannister struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	BatchNo       string `gorm:"size:100;not null;index"`
	StaffOnDutyID uint   `gorm:"index;not null"`
	StaffOnDuty   User   `gorm:"foreignKey:StaffOnDutyID;constraint:OnDelete:RESTRICT"`
	ReturnedByID  *uint
	ReturnedBy    *User   `gorm:"foreignKey:ReturnedByID;constraint:OnDelete:RESTRICT"`
	ClientID      *uint   `gorm:"index"`
	Client        *Client `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity      int64   `gorm:"not null"`
	Balance       int64   `gorm:"not null"` // cannister stock right after the issue
	Returned      bool    `gorm:"not null;default:false"`
	DateIssued    time.Time `gorm:"index;not null"`
	DateReturned  *time.Time
	CreatedAt     time.Time
}
