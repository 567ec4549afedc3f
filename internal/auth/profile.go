package auth

import (
	"errors"
	"fmt"

	"bloodbank-backend/internal/models"

	"gorm.io/gorm"
)

// Profile is the role-specific extension of a user. Exactly one of Donor and
// Hospital is set for those roles; admins have neither.
type Profile struct {
	Role     models.Role
	Donor    *models.Donor
	Hospital *models.Hospital
}

// LoadProfile resolves the profile for user by role.
func LoadProfile(db *gorm.DB, user *models.User) (*Profile, error) {
	p := &Profile{Role: user.Role}

	switch user.Role {
	case models.RoleDonor:
		var d models.Donor
		if err := db.Where("user_id = ?", user.ID).First(&d).Error; err != nil {
			return nil, profileErr("donor", err)
		}
		p.Donor = &d
	case models.RoleHospital:
		var h models.Hospital
		if err := db.Where("user_id = ?", user.ID).First(&h).Error; err != nil {
			return nil, profileErr("hospital", err)
		}
		p.Hospital = &h
	case models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrValidation, user.Role)
	}

	return p, nil
}

func profileErr(kind string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s not found", models.ErrNotFound, kind)
	}
	return fmt.Errorf("load %s profile: %w", kind, err)
}
