package profile

import (
	"time"

	"bloodbank-backend/internal/apierr"
	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/ledger"
	"bloodbank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DonorProfileResponse struct {
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	BloodType models.BloodType `json:"blood_type"`
	Phone     string           `json:"phone"`
	Address   string           `json:"address"`
	DOB       *string          `json:"dob"`
}

type UpdateDonorProfileRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	DOB     *string `json:"dob"` // "2006-01-02"
}

type HospitalProfileResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	HospitalID string `json:"hospital_id"`
	Address    string `json:"address"`
	Location   string `json:"location"`
	Contact    string `json:"contact"`
}

type UpdateHospitalProfileRequest struct {
	HospitalID *string `json:"hospital_id"`
	Address    *string `json:"address"`
	Location   *string `json:"location"`
	Contact    *string `json:"contact"`
}

type DirectoryDonorResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	BloodType models.BloodType `json:"blood_type"`
	Phone     string           `json:"phone"`
}

type TransactionResponse struct {
	ID        uint                   `json:"id"`
	Reference string                 `json:"reference"`
	Kind      models.TransactionKind `json:"kind"`
	BloodType models.BloodType       `json:"blood_type"`
	Quantity  int                    `json:"quantity"`
	Date      string                 `json:"date"`
	Notes     string                 `json:"notes"`
}

func donorResponse(d *models.Donor) DonorProfileResponse {
	resp := DonorProfileResponse{
		Name:      d.User.Name,
		Email:     d.User.Email,
		BloodType: d.BloodType,
		Phone:     d.Phone,
		Address:   d.Address,
	}
	if d.DOB != nil {
		s := d.DOB.Format("2006-01-02")
		resp.DOB = &s
	}
	return resp
}

func hospitalResponse(h *models.Hospital) HospitalProfileResponse {
	return HospitalProfileResponse{
		ID:         h.ID,
		Name:       h.User.Name,
		Email:      h.User.Email,
		HospitalID: h.HospitalID,
		Address:    h.Address,
		Location:   h.Location,
		Contact:    h.Contact,
	}
}

// GET /api/donor/profile
func GetDonorProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		donor, err := DonorByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load donor profile")
		}
		return c.JSON(donorResponse(donor))
	}
}

// PUT /api/donor/profile
func UpdateDonorProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body UpdateDonorProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in := DonorUpdate{Name: body.Name, Email: body.Email, Phone: body.Phone, Address: body.Address}
		if body.DOB != nil && *body.DOB != "" {
			d, err := time.Parse("2006-01-02", *body.DOB)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "dob must be 'YYYY-MM-DD'")
			}
			in.DOB = &d
		}

		donor, err := UpdateDonor(database.DB, userID, in)
		if err != nil {
			return apierr.From(err, "could not update donor profile")
		}
		return c.JSON(donorResponse(donor))
	}
}

// GET /api/hospital/profile
func GetHospitalProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		h, err := HospitalByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load hospital profile")
		}
		return c.JSON(hospitalResponse(h))
	}
}

// PUT /api/hospital/profile
func UpdateHospitalProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body UpdateHospitalProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		h, err := UpdateHospital(database.DB, userID, HospitalUpdate{
			HospitalID: body.HospitalID,
			Address:    body.Address,
			Location:   body.Location,
			Contact:    body.Contact,
		})
		if err != nil {
			return apierr.From(err, "could not update hospital profile")
		}
		return c.JSON(hospitalResponse(h))
	}
}

// GET /api/hospital/history
// Distributions received by the calling hospital.
func HospitalHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		h, err := HospitalByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load hospital profile")
		}

		txs, err := ledger.History(database.DB, ledger.Filter{
			Kind:       models.TransactionDistribution,
			HospitalID: &h.ID,
		})
		if err != nil {
			return apierr.From(err, "could not list history")
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for _, t := range txs {
			resp = append(resp, TransactionResponse{
				ID:        t.ID,
				Reference: t.Reference,
				Kind:      t.Kind,
				BloodType: t.BloodType,
				Quantity:  t.Quantity,
				Date:      t.Date.Format("2006-01-02 15:04:05"),
				Notes:     t.Notes,
			})
		}
		return c.JSON(resp)
	}
}

// GET /api/bloodbank/donors
func ListDonorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		donors, err := ListDonors(database.DB)
		if err != nil {
			return apierr.From(err, "could not list donors")
		}

		resp := make([]DirectoryDonorResponse, 0, len(donors))
		for _, d := range donors {
			resp = append(resp, DirectoryDonorResponse{
				ID:        d.ID,
				Name:      d.User.Name,
				Email:     d.User.Email,
				BloodType: d.BloodType,
				Phone:     d.Phone,
			})
		}
		return c.JSON(resp)
	}
}

// GET /api/bloodbank/hospitals
func ListHospitalsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		hospitals, err := ListHospitals(database.DB)
		if err != nil {
			return apierr.From(err, "could not list hospitals")
		}

		resp := make([]HospitalProfileResponse, 0, len(hospitals))
		for i := range hospitals {
			resp = append(resp, hospitalResponse(&hospitals[i]))
		}
		return c.JSON(resp)
	}
}
