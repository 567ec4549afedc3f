package models

import "time"

// Donor: one-to-one extension of a donor User.
type Donor struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	User      User
	BloodType BloodType `gorm:"size:3;not null"`
	Phone     string    `gorm:"size:20;not null"`
	Address   string    `gorm:"size:255"`
	Sex       string    `gorm:"size:10"`
	Age       int
	DOB       *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Hospital: one-to-one extension of a hospital User.
type Hospital struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"uniqueIndex;not null"`
	User       User
	HospitalID string `gorm:"size:50;uniqueIndex;not null"` // external identifier, e.g. license number
	Address    string `gorm:"size:255;not null"`
	Location   string `gorm:"size:255;not null"`
	Contact    string `gorm:"size:50;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
