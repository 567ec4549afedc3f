package profile

import (
	"errors"
	"testing"
	"time"

	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateDonor(t *testing.T) {
	db := testutil.NewDB(t)
	donor := testutil.CreateDonor(t, db, models.BloodTypeAPos)

	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	got, err := UpdateDonor(db, donor.UserID, DonorUpdate{
		Name:  ptr("Renamed"),
		Email: ptr(" NEW@Example.com "),
		Phone: ptr(""),
		DOB:   &dob,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.User.Name != "Renamed" || got.User.Email != "new@example.com" {
		t.Errorf("unexpected user: %+v", got.User)
	}
	if got.Phone != donor.Phone {
		t.Errorf("empty phone must keep the old value, got %q", got.Phone)
	}

	reloaded, err := DonorByUser(db, donor.UserID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.User.Email != "new@example.com" || reloaded.DOB == nil || !reloaded.DOB.Equal(dob) {
		t.Errorf("update not persisted: %+v", reloaded)
	}
	if reloaded.BloodType != models.BloodTypeAPos {
		t.Errorf("blood type must not change, got %s", reloaded.BloodType)
	}
}

func TestUpdateDonor_EmailClash(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateDonor(t, db, models.BloodTypeAPos)
	b := testutil.CreateDonor(t, db, models.BloodTypeBPos)

	_, err := UpdateDonor(db, a.UserID, DonorUpdate{Email: ptr(b.User.Email), Address: ptr("9 New St")})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	reloaded, _ := DonorByUser(db, a.UserID)
	if reloaded.Address != a.Address {
		t.Errorf("a failed update must not write, address is %q", reloaded.Address)
	}
}

func TestUpdateHospital(t *testing.T) {
	db := testutil.NewDB(t)
	h := testutil.CreateHospital(t, db)
	other := testutil.CreateHospital(t, db)

	got, err := UpdateHospital(db, h.UserID, HospitalUpdate{Location: ptr("Shelbyville")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location != "Shelbyville" || got.HospitalID != h.HospitalID {
		t.Errorf("unexpected hospital: %+v", got)
	}

	_, err = UpdateHospital(db, h.UserID, HospitalUpdate{
		HospitalID: ptr(other.HospitalID),
		Location:   ptr("Capital City"),
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	stored, err := HospitalByUser(db, h.UserID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.HospitalID != h.HospitalID || stored.Location != "Shelbyville" {
		t.Errorf("rejected update changed the row: %+v", stored)
	}
}

func TestLookups_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	h := testutil.CreateHospital(t, db)

	if _, err := DonorByUser(db, h.UserID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := HospitalByUser(db, 12345); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectory(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateDonor(t, db, models.BloodTypeAPos)
	testutil.CreateDonor(t, db, models.BloodTypeONeg)
	testutil.CreateHospital(t, db)

	donors, err := ListDonors(db)
	if err != nil || len(donors) != 2 {
		t.Fatalf("expected 2 donors, got %d (%v)", len(donors), err)
	}
	if donors[0].User.Email == "" {
		t.Error("expected user to be preloaded")
	}
	hospitals, err := ListHospitals(db)
	if err != nil || len(hospitals) != 1 {
		t.Fatalf("expected 1 hospital, got %d (%v)", len(hospitals), err)
	}
}
