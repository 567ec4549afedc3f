package models

import "time"

// Donation: donor-facing record of a donation visit. The ledger entry lives in Transaction.
type Donation struct {
	ID            uint `gorm:"primaryKey"`
	DonorID       uint `gorm:"index;not null"`
	Donor         Donor
	BloodType     BloodType `gorm:"size:3;not null"`
	Date          time.Time `gorm:"index;not null"`
	Location      string    `gorm:"size:255;not null"`
	Quantity      int       `gorm:"not null"`
	TransactionID uint      `gorm:"index;not null"`
	CreatedAt     time.Time
}
