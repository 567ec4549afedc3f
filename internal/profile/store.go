package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"

	"gorm.io/gorm"
)

func DonorByUser(db *gorm.DB, userID uint) (*models.Donor, error) {
	var d models.Donor
	err := db.Preload("User").Where("user_id = ?", userID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: donor not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load donor: %w", err)
	}
	return &d, nil
}

func HospitalByUser(db *gorm.DB, userID uint) (*models.Hospital, error) {
	var h models.Hospital
	err := db.Preload("User").Where("user_id = ?", userID).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: hospital not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load hospital: %w", err)
	}
	return &h, nil
}

// DonorUpdate: nil fields keep their current value.
type DonorUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	DOB     *time.Time
}

// UpdateDonor writes the user and donor rows together.
func UpdateDonor(db *gorm.DB, userID uint, in DonorUpdate) (*models.Donor, error) {
	donor, err := DonorByUser(db, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		donor.User.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		donor.User.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil && *in.Phone != "" {
		donor.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil && *in.Address != "" {
		donor.Address = strings.TrimSpace(*in.Address)
	}
	if in.DOB != nil {
		donor.DOB = in.DOB
	}

	err = database.WithTx(db, func(tx *gorm.DB) error {
		var clash int64
		if err := tx.Model(&models.User{}).
			Where("email = ? AND id <> ?", donor.User.Email, donor.User.ID).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return fmt.Errorf("%w: email already registered", models.ErrValidation)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", donor.User.ID).Updates(map[string]any{
			"name":  donor.User.Name,
			"email": donor.User.Email,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Donor{}).Where("id = ?", donor.ID).Updates(map[string]any{
			"phone":   donor.Phone,
			"address": donor.Address,
			"dob":     donor.DOB,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return donor, nil
}

type HospitalUpdate struct {
	HospitalID *string
	Address    *string
	Location   *string
	Contact    *string
}

func UpdateHospital(db *gorm.DB, userID uint, in HospitalUpdate) (*models.Hospital, error) {
	h, err := HospitalByUser(db, userID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&h.HospitalID, in.HospitalID)
	set(&h.Address, in.Address)
	set(&h.Location, in.Location)
	set(&h.Contact, in.Contact)

	err = database.WithTx(db, func(tx *gorm.DB) error {
		var clash int64
		if err := tx.Model(&models.Hospital{}).
			Where("hospital_id = ? AND id <> ?", h.HospitalID, h.ID).
			Count(&clash).Error; err != nil {
			return fmt.Errorf("check hospital id: %w", err)
		}
		if clash > 0 {
			return fmt.Errorf("%w: hospital ID already exists", models.ErrValidation)
		}

		err := tx.Model(&models.Hospital{}).Where("id = ?", h.ID).Updates(map[string]any{
			"hospital_id": h.HospitalID,
			"address":     h.Address,
			"location":    h.Location,
			"contact":     h.Contact,
		}).Error
		if err != nil {
			return fmt.Errorf("update hospital: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func ListDonors(db *gorm.DB) ([]models.Donor, error) {
	var out []models.Donor
	if err := db.Preload("User").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	return out, nil
}

func ListHospitals(db *gorm.DB) ([]models.Hospital, error) {
	var out []models.Hospital
	if err := db.Preload("User").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	return out, nil
}
