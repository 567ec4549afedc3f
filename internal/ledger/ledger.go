// Package ledger is the append-only history of donations and distributions.
// It exposes no update or delete; corrections are new entries.
package ledger

import (
	"fmt"
	"time"

	"bloodbank-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Entry struct {
	Kind       models.TransactionKind
	BloodType  models.BloodType
	Quantity   int
	DonorID    *uint
	HospitalID *uint
	Date       time.Time // zero means now
	Notes      string
}

func (e Entry) validate() error {
	if _, err := models.ParseBloodType(string(e.BloodType)); err != nil {
		return err
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than 0", models.ErrValidation)
	}

	switch e.Kind {
	case models.TransactionDonation:
		if e.DonorID == nil || e.HospitalID != nil {
			return fmt.Errorf("%w: a donation references a donor and no hospital", models.ErrValidation)
		}
	case models.TransactionDistribution:
		if e.HospitalID == nil || e.DonorID != nil {
			return fmt.Errorf("%w: a distribution references a hospital and no donor", models.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", models.ErrValidation, e.Kind)
	}
	return nil
}

// Append persists one immutable transaction.
func Append(db *gorm.DB, e Entry) (*models.Transaction, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}

	t := models.Transaction{
		Reference:  uuid.NewString(),
		Kind:       e.Kind,
		BloodType:  e.BloodType,
		Quantity:   e.Quantity,
		DonorID:    e.DonorID,
		HospitalID: e.HospitalID,
		Date:       date,
		Notes:      e.Notes,
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("append %s: %w", e.Kind, err)
	}
	return &t, nil
}

type typeSum struct {
	BloodType models.BloodType       `gorm:"column:blood_type"`
	Kind      models.TransactionKind `gorm:"column:kind"`
	Total     int64                  `gorm:"column:total"`
}

// AggregateByType sums quantities per blood type for one kind.
func AggregateByType(db *gorm.DB, kind models.TransactionKind) (map[models.BloodType]int, error) {
	var rows []typeSum
	err := db.Model(&models.Transaction{}).
		Select("blood_type, SUM(quantity) AS total").
		Where("kind = ?", kind).
		Group("blood_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate %s by type: %w", kind, err)
	}

	out := make(map[models.BloodType]int, len(rows))
	for _, r := range rows {
		out[r.BloodType] = int(r.Total)
	}
	return out, nil
}

// TypeTotals pairs donated and distributed units for one blood type.
type TypeTotals struct {
	BloodType     models.BloodType `json:"blood_type"`
	Donations     int              `json:"donations"`
	Distributions int              `json:"distributions"`
}

// TotalsByType returns one row per blood type that has any transaction, in
// canonical blood type order.
func TotalsByType(db *gorm.DB) ([]TypeTotals, error) {
	var rows []typeSum
	err := db.Model(&models.Transaction{}).
		Select("blood_type, kind, SUM(quantity) AS total").
		Group("blood_type, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate totals by type: %w", err)
	}

	byType := make(map[models.BloodType]*TypeTotals)
	for _, r := range rows {
		t, ok := byType[r.BloodType]
		if !ok {
			t = &TypeTotals{BloodType: r.BloodType}
			byType[r.BloodType] = t
		}
		switch r.Kind {
		case models.TransactionDonation:
			t.Donations += int(r.Total)
		case models.TransactionDistribution:
			t.Distributions += int(r.Total)
		}
	}

	out := make([]TypeTotals, 0, len(byType))
	for _, bt := range models.AllBloodTypes {
		if t, ok := byType[bt]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

// CountByKind counts transactions, not units.
func CountByKind(db *gorm.DB, kind models.TransactionKind) (int64, error) {
	var n int64
	if err := db.Model(&models.Transaction{}).Where("kind = ?", kind).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// DistinctCounterparties counts distinct donors for donations and distinct
// hospitals for distributions.
func DistinctCounterparties(db *gorm.DB, kind models.TransactionKind) (int64, error) {
	var column string
	switch kind {
	case models.TransactionDonation:
		column = "donor_id"
	case models.TransactionDistribution:
		column = "hospital_id"
	default:
		return 0, fmt.Errorf("%w: unknown transaction kind %q", models.ErrValidation, kind)
	}

	var n int64
	err := db.Model(&models.Transaction{}).
		Where("kind = ? AND "+column+" IS NOT NULL", kind).
		Distinct(column).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count distinct %s: %w", column, err)
	}
	return n, nil
}

type Filter struct {
	Kind       models.TransactionKind
	DonorID    *uint
	HospitalID *uint
	Limit      int
}

// History lists transactions matching f, newest first.
func History(db *gorm.DB, f Filter) ([]models.Transaction, error) {
	q := db.Model(&models.Transaction{})
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.DonorID != nil {
		q = q.Where("donor_id = ?", *f.DonorID)
	}
	if f.HospitalID != nil {
		q = q.Where("hospital_id = ?", *f.HospitalID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.Transaction
	if err := q.Order("date DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}
