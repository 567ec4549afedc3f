package models

import "time"

// BloodBank is the inventory singleton. It is created once by seeding and never deleted.
type BloodBank struct {
	ID        uint            `gorm:"primaryKey"`
	Items     []InventoryItem `gorm:"foreignKey:BloodBankID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InventoryItem: units on hand for one blood type.
type InventoryItem struct {
	ID          uint      `gorm:"primaryKey"`
	BloodBankID uint      `gorm:"uniqueIndex:idx_inventory_bank_type;not null"`
	BloodType   BloodType `gorm:"size:3;uniqueIndex:idx_inventory_bank_type;not null"`
	Quantity    int       `gorm:"not null;default:0"`
	LastUpdated time.Time
}
