package models

import (
	"fmt"
	"strings"
)

type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// AllBloodTypes is the canonical ordering used for seeding and reports.
var AllBloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

func ParseBloodType(s string) (BloodType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("%w: blood type is required", ErrValidation)
	}
	for _, bt := range AllBloodTypes {
		if string(bt) == s {
			return bt, nil
		}
	}
	return "", fmt.Errorf("%w: invalid blood type %q", ErrValidation, s)
}

// Index returns the position of bt in AllBloodTypes, or len(AllBloodTypes) when unknown.
func (bt BloodType) Index() int {
	for i, t := range AllBloodTypes {
		if t == bt {
			return i
		}
	}
	return len(AllBloodTypes)
}
