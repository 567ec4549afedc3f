// Package donation records donor visits. Each donation is mirrored by a
// donation entry in the ledger; inventory is adjusted separately by an admin.
package donation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/ledger"
	"bloodbank-backend/internal/models"

	"gorm.io/gorm"
)

type SubmitInput struct {
	DonorID  uint
	Date     time.Time
	Location string
	Quantity int
}

// Submit stores the donation and its ledger entry atomically. The blood type
// comes from the donor's profile.
func Submit(db *gorm.DB, in SubmitInput) (*models.Donation, error) {
	location := strings.TrimSpace(in.Location)
	if in.Date.IsZero() || location == "" || in.Quantity == 0 {
		return nil, fmt.Errorf("%w: date, location and quantity are required", models.ErrValidation)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", models.ErrValidation)
	}

	var out models.Donation
	err := database.WithTx(db, func(tx *gorm.DB) error {
		var donor models.Donor
		err := tx.First(&donor, in.DonorID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: donor not found", models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load donor: %w", err)
		}

		donorID := donor.ID
		t, err := ledger.Append(tx, ledger.Entry{
			Kind:      models.TransactionDonation,
			BloodType: donor.BloodType,
			Quantity:  in.Quantity,
			DonorID:   &donorID,
			Date:      in.Date,
			Notes:     fmt.Sprintf("Donation at %s", location),
		})
		if err != nil {
			return err
		}

		out = models.Donation{
			DonorID:       donor.ID,
			BloodType:     donor.BloodType,
			Date:          in.Date,
			Location:      location,
			Quantity:      in.Quantity,
			TransactionID: t.ID,
		}
		if err := tx.Create(&out).Error; err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns a donor's donations newest first.
func History(db *gorm.DB, donorID uint) ([]models.Donation, error) {
	var out []models.Donation
	err := db.Where("donor_id = ?", donorID).
		Order("date DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return out, nil
}
