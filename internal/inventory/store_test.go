package inventory

import (
	"errors"
	"testing"

	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/testutil"
)

func TestSeed_AllTypesAtZero(t *testing.T) {
	db := testutil.NewDB(t)

	bank, created, err := Seed(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected a new bank")
	}

	got, err := Get(db)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != bank.ID {
		t.Errorf("expected bank %d, got %d", bank.ID, got.ID)
	}
	if len(got.Items) != len(models.AllBloodTypes) {
		t.Fatalf("expected %d items, got %d", len(models.AllBloodTypes), len(got.Items))
	}
	for i, it := range got.Items {
		if it.BloodType != models.AllBloodTypes[i] {
			t.Errorf("item %d: expected %s, got %s", i, models.AllBloodTypes[i], it.BloodType)
		}
		if it.Quantity != 0 {
			t.Errorf("%s: expected 0, got %d", it.BloodType, it.Quantity)
		}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)

	first, _, err := Seed(db)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	second, created, err := Seed(db)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if created {
		t.Error("second seed should not create a bank")
	}
	if first.ID != second.ID {
		t.Errorf("expected same bank, got %d and %d", first.ID, second.ID)
	}

	var n int64
	db.Model(&models.InventoryItem{}).Count(&n)
	if n != 8 {
		t.Errorf("expected 8 items, got %d", n)
	}
}

func TestGet_Uninitialized(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := Get(db)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAdjust_AddCreatesMissingEntry(t *testing.T) {
	db := testutil.NewDB(t)
	db.Create(&models.BloodBank{})

	item, err := Adjust(db, models.BloodTypeAPos, 3, ModeAdd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("expected 3, got %d", item.Quantity)
	}
	if item.LastUpdated.IsZero() {
		t.Error("expected last_updated to be stamped")
	}
}

func TestAdjust_AddAndSubtract(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedBank(t, db, map[models.BloodType]int{models.BloodTypeONeg: 4})

	if _, err := Adjust(db, models.BloodTypeONeg, 6, ModeAdd); err != nil {
		t.Fatalf("add: %v", err)
	}
	item, err := Adjust(db, models.BloodTypeONeg, 10, ModeSubtract)
	if err != nil {
		t.Fatalf("subtract: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("expected 0, got %d", item.Quantity)
	}
}

func TestAdjust_SubtractShortage(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedBank(t, db, map[models.BloodType]int{models.BloodTypeBPos: 2})

	_, err := Adjust(db, models.BloodTypeBPos, 3, ModeSubtract)
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if q := testutil.Quantity(t, db, models.BloodTypeBPos); q != 2 {
		t.Errorf("quantity must be unchanged, got %d", q)
	}
}

func TestAdjust_SubtractMissingEntry(t *testing.T) {
	db := testutil.NewDB(t)
	db.Create(&models.BloodBank{})

	_, err := Adjust(db, models.BloodTypeABNeg, 1, ModeSubtract)
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if q := testutil.Quantity(t, db, models.BloodTypeABNeg); q != -1 {
		t.Errorf("no entry should be created, got %d", q)
	}
}

func TestAdjust_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedBank(t, db, nil)

	cases := []struct {
		name  string
		bt    models.BloodType
		delta int
		mode  Mode
	}{
		{"bad blood type", "C+", 1, ModeAdd},
		{"zero delta", models.BloodTypeAPos, 0, ModeAdd},
		{"negative delta", models.BloodTypeAPos, -2, ModeSubtract},
		{"bad mode", models.BloodTypeAPos, 1, "multiply"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Adjust(db, tc.bt, tc.delta, tc.mode)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAdjust_Uninitialized(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := Adjust(db, models.BloodTypeAPos, 1, ModeAdd)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Subtract "); err != nil || m != ModeSubtract {
		t.Errorf("expected subtract, got %q, %v", m, err)
	}
	if _, err := ParseMode("remove"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
