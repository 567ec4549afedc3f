package donation

import (
	"time"

	"bloodbank-backend/internal/apierr"
	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/profile"

	"github.com/gofiber/fiber/v2"
)

type CreateDonationRequest struct {
	Date     string `json:"date"` // "2006-01-02"
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

type DonationResponse struct {
	ID            uint             `json:"id"`
	BloodType     models.BloodType `json:"blood_type"`
	Date          string           `json:"date"`
	Location      string           `json:"location"`
	Quantity      int              `json:"quantity"`
	TransactionID uint             `json:"transaction_id"`
}

func newDonationResponse(d *models.Donation) DonationResponse {
	return DonationResponse{
		ID:            d.ID,
		BloodType:     d.BloodType,
		Date:          d.Date.Format("2006-01-02"),
		Location:      d.Location,
		Quantity:      d.Quantity,
		TransactionID: d.TransactionID,
	}
}

// POST /api/donations
func CreateDonationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateDonationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Date == "" || body.Location == "" || body.Quantity == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "date, location and quantity are required")
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		donor, err := profile.DonorByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load donor profile")
		}

		d, err := Submit(database.DB, SubmitInput{
			DonorID:  donor.ID,
			Date:     date,
			Location: body.Location,
			Quantity: body.Quantity,
		})
		if err != nil {
			return apierr.From(err, "could not record donation")
		}

		return c.Status(fiber.StatusCreated).JSON(newDonationResponse(d))
	}
}

// GET /api/donations/history
func DonationHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		donor, err := profile.DonorByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load donor profile")
		}

		list, err := History(database.DB, donor.ID)
		if err != nil {
			return apierr.From(err, "could not list donations")
		}

		resp := make([]DonationResponse, 0, len(list))
		for i := range list {
			resp = append(resp, newDonationResponse(&list[i]))
		}
		return c.JSON(resp)
	}
}
