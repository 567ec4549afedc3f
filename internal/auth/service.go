package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var phonePattern = regexp.MustCompile(`^\d{10}$`)

type Credentials struct {
	Name     string
	Email    string
	Password string
}

func (cr *Credentials) normalize() error {
	cr.Name = strings.TrimSpace(cr.Name)
	cr.Email = strings.TrimSpace(strings.ToLower(cr.Email))

	var missing []string
	if cr.Name == "" {
		missing = append(missing, "name")
	}
	if cr.Email == "" {
		missing = append(missing, "email")
	}
	if cr.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", models.ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(cr.Email); err != nil {
		return fmt.Errorf("%w: valid email required", models.ErrValidation)
	}
	if len(cr.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, minPasswordLength)
	}
	return nil
}

type DonorRegistration struct {
	Credentials
	Age       int
	BloodType string
	Address   string
	Sex       string
	Phone     string
	DOB       *time.Time
}

type HospitalRegistration struct {
	Credentials
	HospitalID string
	Address    string
	Location   string
	Contact    string
}

// RegisterDonor creates the user and its donor profile in one transaction.
func RegisterDonor(db *gorm.DB, in DonorRegistration) (*models.User, *models.Donor, error) {
	if err := in.normalize(); err != nil {
		return nil, nil, err
	}
	if in.Age < 18 {
		return nil, nil, fmt.Errorf("%w: age must be at least 18", models.ErrValidation)
	}
	bt, err := models.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, nil, fmt.Errorf("%w: address is required", models.ErrValidation)
	}
	sex := strings.ToLower(strings.TrimSpace(in.Sex))
	if sex != "male" && sex != "female" && sex != "other" {
		return nil, nil, fmt.Errorf("%w: invalid sex value", models.ErrValidation)
	}
	if !phonePattern.MatchString(in.Phone) {
		return nil, nil, fmt.Errorf("%w: phone number must be 10 digits", models.ErrValidation)
	}

	var (
		user  *models.User
		donor models.Donor
	)
	err = database.WithTx(db, func(tx *gorm.DB) error {
		var err error
		if user, err = createUser(tx, in.Credentials, models.RoleDonor); err != nil {
			return err
		}
		donor = models.Donor{
			UserID:    user.ID,
			BloodType: bt,
			Phone:     in.Phone,
			Address:   strings.TrimSpace(in.Address),
			Sex:       sex,
			Age:       in.Age,
			DOB:       in.DOB,
		}
		return tx.Create(&donor).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return user, &donor, nil
}

// RegisterHospital creates the user and its hospital profile in one
// transaction. A duplicate email or hospital identifier aborts both writes.
func RegisterHospital(db *gorm.DB, in HospitalRegistration) (*models.User, *models.Hospital, error) {
	in.HospitalID = strings.TrimSpace(in.HospitalID)
	in.Address = strings.TrimSpace(in.Address)
	in.Location = strings.TrimSpace(in.Location)
	in.Contact = strings.TrimSpace(in.Contact)

	var missing []string
	for _, f := range []struct{ name, val string }{
		{"name", in.Name}, {"email", in.Email}, {"password", in.Password},
		{"hospital_id", in.HospitalID}, {"address", in.Address},
		{"location", in.Location}, {"contact", in.Contact},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing required fields: %s", models.ErrValidation, strings.Join(missing, ", "))
	}
	if err := in.normalize(); err != nil {
		return nil, nil, err
	}

	var (
		user     *models.User
		hospital models.Hospital
	)
	err := database.WithTx(db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Hospital{}).Where("hospital_id = ?", in.HospitalID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: hospital ID already exists", models.ErrValidation)
		}

		var err error
		if user, err = createUser(tx, in.Credentials, models.RoleHospital); err != nil {
			return err
		}
		hospital = models.Hospital{
			UserID:     user.ID,
			HospitalID: in.HospitalID,
			Address:    in.Address,
			Location:   in.Location,
			Contact:    in.Contact,
		}
		return tx.Create(&hospital).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return user, &hospital, nil
}

// RegisterAdmin is only open while no admin exists.
func RegisterAdmin(db *gorm.DB, in Credentials) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var user *models.User
	err := database.WithTx(db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: an admin already exists", models.ErrForbidden)
		}

		var err error
		user, err = createUser(tx, in, models.RoleAdmin)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks email and password against a user registered under role.
func Authenticate(db *gorm.DB, email, password string, role models.Role) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User
	err := db.Where("email = ? AND role = ?", email, role).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrAuth)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrAuth)
	}
	return &user, nil
}

func createUser(tx *gorm.DB, cr Credentials, role models.Role) (*models.User, error) {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", cr.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already registered", models.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cr.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         cr.Name,
		Email:        cr.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
