package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bloodbank-backend/internal/models"

	"gorm.io/gorm"
)

type Mode string

const (
	ModeAdd      Mode = "add"
	ModeSubtract Mode = "subtract"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAdd, ModeSubtract:
		return m, nil
	default:
		return "", fmt.Errorf("%w: action must be 'add' or 'subtract'", models.ErrValidation)
	}
}

// Get returns the blood bank with its items in canonical blood type order.
func Get(db *gorm.DB) (*models.BloodBank, error) {
	var bank models.BloodBank
	err := db.Preload("Items").Order("id ASC").First(&bank).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: blood bank not initialized", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load blood bank: %w", err)
	}

	sort.SliceStable(bank.Items, func(i, j int) bool {
		return bank.Items[i].BloodType.Index() < bank.Items[j].BloodType.Index()
	})
	return &bank, nil
}

// Adjust is the single write path for inventory quantities. delta is a
// magnitude and must be positive. Subtracting more than is on hand, or from a
// blood type with no entry, fails with ErrInsufficientStock and changes nothing.
// The subtraction is one conditional UPDATE so concurrent writers cannot
// drive a quantity below zero.
func Adjust(db *gorm.DB, bloodType models.BloodType, delta int, mode Mode) (*models.InventoryItem, error) {
	bt, err := models.ParseBloodType(string(bloodType))
	if err != nil {
		return nil, err
	}
	if delta <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", models.ErrValidation)
	}

	bankID, err := bankID(db)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	scope := db.Model(&models.InventoryItem{}).Where("blood_bank_id = ? AND blood_type = ?", bankID, bt)

	switch mode {
	case ModeAdd:
		res := scope.Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"last_updated": now,
		})
		if res.Error != nil {
			return nil, fmt.Errorf("increase %s: %w", bt, res.Error)
		}
		if res.RowsAffected == 0 {
			item := models.InventoryItem{BloodBankID: bankID, BloodType: bt, Quantity: delta, LastUpdated: now}
			if err := db.Create(&item).Error; err != nil {
				return nil, fmt.Errorf("create %s entry: %w", bt, err)
			}
		}

	case ModeSubtract:
		res := scope.Where("quantity >= ?", delta).Updates(map[string]any{
			"quantity":     gorm.Expr("quantity - ?", delta),
			"last_updated": now,
		})
		if res.Error != nil {
			return nil, fmt.Errorf("decrease %s: %w", bt, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, shortage(db, bankID, bt, delta)
		}

	default:
		return nil, fmt.Errorf("%w: action must be 'add' or 'subtract'", models.ErrValidation)
	}

	if err := db.Model(&models.BloodBank{}).Where("id = ?", bankID).Update("updated_at", now).Error; err != nil {
		return nil, fmt.Errorf("touch blood bank: %w", err)
	}

	var item models.InventoryItem
	if err := db.Where("blood_bank_id = ? AND blood_type = ?", bankID, bt).First(&item).Error; err != nil {
		return nil, fmt.Errorf("reload %s entry: %w", bt, err)
	}
	return &item, nil
}

// Seed creates the blood bank with every blood type at zero. It is a no-op
// when the bank already exists; created reports which case happened.
func Seed(db *gorm.DB) (bank *models.BloodBank, created bool, err error) {
	bank, err = Get(db)
	if err == nil {
		return bank, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	now := time.Now()
	fresh := models.BloodBank{}
	for _, bt := range models.AllBloodTypes {
		fresh.Items = append(fresh.Items, models.InventoryItem{BloodType: bt, Quantity: 0, LastUpdated: now})
	}
	if err := db.Create(&fresh).Error; err != nil {
		return nil, false, fmt.Errorf("seed blood bank: %w", err)
	}
	return &fresh, true, nil
}

func bankID(db *gorm.DB) (uint, error) {
	var bank models.BloodBank
	err := db.Select("id").Order("id ASC").First(&bank).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: blood bank not initialized", models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("load blood bank: %w", err)
	}
	return bank.ID, nil
}

func shortage(db *gorm.DB, bankID uint, bt models.BloodType, want int) error {
	var item models.InventoryItem
	err := db.Where("blood_bank_id = ? AND blood_type = ?", bankID, bt).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: blood type %s not available in inventory", models.ErrInsufficientStock, bt)
	}
	if err != nil {
		return fmt.Errorf("load %s entry: %w", bt, err)
	}
	return fmt.Errorf("%w: %d units of %s requested, %d available", models.ErrInsufficientStock, want, bt, item.Quantity)
}
