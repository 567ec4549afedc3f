package auth

import (
	"testing"

	"bloodbank-backend/internal/models"
)

func TestProfileBody(t *testing.T) {
	donor := &models.Donor{BloodType: models.BloodTypeONeg}
	hospital := &models.Hospital{HospitalID: "H-1"}

	body, err := ProfileBody(&Profile{Role: models.RoleDonor, Donor: donor})
	if err != nil {
		t.Fatalf("donor: %v", err)
	}
	if got, ok := body.(DonorProfileResponse); !ok || got.BloodType != models.BloodTypeONeg {
		t.Fatalf("donor body: %#v", body)
	}

	body, err = ProfileBody(&Profile{Role: models.RoleHospital, Hospital: hospital})
	if err != nil {
		t.Fatalf("hospital: %v", err)
	}
	if got, ok := body.(HospitalProfileResponse); !ok || got.HospitalID != "H-1" {
		t.Fatalf("hospital body: %#v", body)
	}

	body, err = ProfileBody(&Profile{Role: models.RoleAdmin})
	if err != nil || body != nil {
		t.Fatalf("admin: body=%#v err=%v", body, err)
	}

	if _, err := ProfileBody(&Profile{Role: models.Role("guest")}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
