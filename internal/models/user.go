package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a closed set. Every switch over it handles RoleDonor, RoleHospital
// and RoleAdmin and treats anything else as an error.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleDonor, RoleHospital, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:20;index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
