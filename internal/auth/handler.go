package auth

import (
	"fmt"
	"time"

	"bloodbank-backend/internal/apierr"
	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterDonorRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Age       int    `json:"age"`
	BloodType string `json:"blood_type"`
	Address   string `json:"address"`
	Sex       string `json:"sex"`
	Phone     string `json:"phone"`
	DOB       string `json:"dob"` // "2006-01-02", optional
}

type RegisterHospitalRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	HospitalID string `json:"hospital_id"`
	Address    string `json:"address"`
	Location   string `json:"location"`
	Contact    string `json:"contact"`
}

type UserResponse struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type DonorProfileResponse struct {
	ID        uint             `json:"id"`
	BloodType models.BloodType `json:"blood_type"`
	Phone     string           `json:"phone"`
	Address   string           `json:"address"`
	Sex       string           `json:"sex"`
	Age       int              `json:"age"`
	DOB       *string          `json:"dob"`
}

type HospitalProfileResponse struct {
	ID         uint   `json:"id"`
	HospitalID string `json:"hospital_id"`
	Address    string `json:"address"`
	Location   string `json:"location"`
	Contact    string `json:"contact"`
}

type SessionResponse struct {
	Token   string       `json:"token,omitempty"`
	User    UserResponse `json:"user"`
	Profile any          `json:"profile"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func NewDonorProfileResponse(d *models.Donor) DonorProfileResponse {
	resp := DonorProfileResponse{
		ID:        d.ID,
		BloodType: d.BloodType,
		Phone:     d.Phone,
		Address:   d.Address,
		Sex:       d.Sex,
		Age:       d.Age,
	}
	if d.DOB != nil {
		s := d.DOB.Format("2006-01-02")
		resp.DOB = &s
	}
	return resp
}

func NewHospitalProfileResponse(h *models.Hospital) HospitalProfileResponse {
	return HospitalProfileResponse{
		ID:         h.ID,
		HospitalID: h.HospitalID,
		Address:    h.Address,
		Location:   h.Location,
		Contact:    h.Contact,
	}
}

// ProfileBody renders p for JSON; admins have no profile.
func ProfileBody(p *Profile) (any, error) {
	switch p.Role {
	case models.RoleDonor:
		return NewDonorProfileResponse(p.Donor), nil
	case models.RoleHospital:
		return NewHospitalProfileResponse(p.Hospital), nil
	case models.RoleAdmin:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown role %q", p.Role)
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Email == "" || body.Password == "" || body.Role == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email, password and role are required")
		}

		role, err := models.ParseRole(body.Role)
		if err != nil {
			return apierr.From(err, "login failed")
		}

		user, err := Authenticate(database.DB, body.Email, body.Password, role)
		if err != nil {
			return apierr.From(err, "login failed")
		}

		profile, err := LoadProfile(database.DB, user)
		if err != nil {
			return apierr.From(err, "could not load profile")
		}

		return session(c, cfg, fiber.StatusOK, user, profile)
	}
}

// POST /api/auth/register/donor
func RegisterDonorHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterDonorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in := DonorRegistration{
			Credentials: Credentials{Name: body.Name, Email: body.Email, Password: body.Password},
			Age:         body.Age,
			BloodType:   body.BloodType,
			Address:     body.Address,
			Sex:         body.Sex,
			Phone:       body.Phone,
		}
		if body.DOB != "" {
			d, err := time.Parse("2006-01-02", body.DOB)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "dob must be 'YYYY-MM-DD'")
			}
			in.DOB = &d
		}

		user, donor, err := RegisterDonor(database.DB, in)
		if err != nil {
			return apierr.From(err, "could not register donor")
		}

		return session(c, cfg, fiber.StatusCreated, user, &Profile{Role: user.Role, Donor: donor})
	}
}

// POST /api/auth/register/hospital
func RegisterHospitalHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterHospitalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, hospital, err := RegisterHospital(database.DB, HospitalRegistration{
			Credentials: Credentials{Name: body.Name, Email: body.Email, Password: body.Password},
			HospitalID:  body.HospitalID,
			Address:     body.Address,
			Location:    body.Location,
			Contact:     body.Contact,
		})
		if err != nil {
			return apierr.From(err, "could not register hospital")
		}

		return session(c, cfg, fiber.StatusCreated, user, &Profile{Role: user.Role, Hospital: hospital})
	}
}

// POST /api/auth/register/admin
func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, err := RegisterAdmin(database.DB, Credentials{Name: body.Name, Email: body.Email, Password: body.Password})
		if err != nil {
			return apierr.From(err, "could not register admin")
		}

		return session(c, cfg, fiber.StatusCreated, user, &Profile{Role: user.Role})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CurrentUserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}

		profile, err := LoadProfile(database.DB, &user)
		if err != nil {
			return apierr.From(err, "could not load profile")
		}

		body, err := ProfileBody(profile)
		if err != nil {
			return apierr.From(err, "could not load profile")
		}

		return c.JSON(SessionResponse{User: NewUserResponse(&user), Profile: body})
	}
}

func session(c *fiber.Ctx, cfg *config.Config, status int, user *models.User, profile *Profile) error {
	token, err := GenerateToken(cfg, user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}
	body, err := ProfileBody(profile)
	if err != nil {
		return apierr.From(err, "could not load profile")
	}

	return c.Status(status).JSON(SessionResponse{
		Token:   token,
		User:    NewUserResponse(user),
		Profile: body,
	})
}
