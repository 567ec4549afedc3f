package models

import "time"

type TransactionKind string

const (
	TransactionDonation     TransactionKind = "donation"
	TransactionDistribution TransactionKind = "distribution"
)

// Transaction: one immutable movement of blood units.
// Donations reference a donor, distributions reference a hospital.
type Transaction struct {
	ID         uint            `gorm:"primaryKey"`
	Reference  string          `gorm:"size:36;uniqueIndex;not null"`
	Kind       TransactionKind `gorm:"size:20;index;not null"`
	BloodType  BloodType       `gorm:"size:3;index;not null"`
	Quantity   int             `gorm:"not null"`
	DonorID    *uint           `gorm:"index"`
	Donor      *Donor
	HospitalID *uint `gorm:"index"`
	Hospital   *Hospital
	Date       time.Time `gorm:"index;not null"`
	Notes      string    `gorm:"size:255"`
	CreatedAt  time.Time
}
