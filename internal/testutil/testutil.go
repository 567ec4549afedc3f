// Package testutil provides throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"

	"gorm.io/gorm"
)

var seq atomic.Int64

// NewDB opens a migrated sqlite database in a temp dir and installs it as
// database.DB for the duration of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func Config() *config.Config {
	return &config.Config{
		HTTPPort:       "0",
		DBDriver:       "sqlite",
		JWTSecret:      "test-secret-that-is-at-least-32-chars",
		JWTIssuer:      "blood-bank-test",
		TokenTTL:       time.Hour,
		CORSOrigins:    "*",
		IdempotencyTTL: time.Hour,
	}
}

// SeedBank creates the blood bank with all eight types. Types missing from
// quantities start at zero.
func SeedBank(t *testing.T, db *gorm.DB, quantities map[models.BloodType]int) *models.BloodBank {
	t.Helper()

	bank := models.BloodBank{}
	for _, bt := range models.AllBloodTypes {
		bank.Items = append(bank.Items, models.InventoryItem{
			BloodType:   bt,
			Quantity:    quantities[bt],
			LastUpdated: time.Now(),
		})
	}
	if err := db.Create(&bank).Error; err != nil {
		t.Fatalf("seed bank: %v", err)
	}
	return &bank
}

// Quantity reads the current quantity of bt, or -1 when there is no entry.
func Quantity(t *testing.T, db *gorm.DB, bt models.BloodType) int {
	t.Helper()

	var item models.InventoryItem
	err := db.Where("blood_type = ?", bt).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return -1
	}
	if err != nil {
		t.Fatalf("load %s: %v", bt, err)
	}
	return item.Quantity
}

func CreateUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	n := seq.Add(1)
	u := models.User{
		Name:         fmt.Sprintf("%s %d", role, n),
		Email:        fmt.Sprintf("%s%d@example.com", role, n),
		PasswordHash: "unused",
		Role:         role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

func CreateHospital(t *testing.T, db *gorm.DB) *models.Hospital {
	t.Helper()

	u := CreateUser(t, db, models.RoleHospital)
	h := models.Hospital{
		UserID:     u.ID,
		HospitalID: fmt.Sprintf("H-%d", u.ID),
		Address:    "1 Main St",
		Location:   "Springfield",
		Contact:    "5550001111",
	}
	if err := db.Create(&h).Error; err != nil {
		t.Fatalf("create hospital: %v", err)
	}
	h.User = *u
	return &h
}

func CreateDonor(t *testing.T, db *gorm.DB, bt models.BloodType) *models.Donor {
	t.Helper()

	u := CreateUser(t, db, models.RoleDonor)
	d := models.Donor{
		UserID:    u.ID,
		BloodType: bt,
		Phone:     "5551234567",
		Address:   "2 Elm St",
		Sex:       "female",
		Age:       30,
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("create donor: %v", err)
	}
	d.User = *u
	return &d
}
