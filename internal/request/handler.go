package request

import (
	"fmt"
	"strconv"
	"time"

	"bloodbank-backend/internal/apierr"
	"bloodbank-backend/internal/audit"
	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/profile"

	"github.com/gofiber/fiber/v2"
)

type CreateRequestRequest struct {
	BloodType string `json:"blood_type"`
	Quantity  int    `json:"quantity"`
	Urgency   string `json:"urgency"`
	Notes     string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

type RequestResponse struct {
	ID           uint                 `json:"id"`
	Reference    string               `json:"reference"`
	HospitalID   uint                 `json:"hospital_id"`
	HospitalName string               `json:"hospital_name"`
	BloodType    models.BloodType     `json:"blood_type"`
	Quantity     int                  `json:"quantity"`
	Urgency      models.Urgency       `json:"urgency"`
	Status       models.RequestStatus `json:"status"`
	Notes        string               `json:"notes"`
	AdminNotes   string               `json:"admin_notes"`
	ResponseDate *string              `json:"response_date"`
	CreatedAt    string               `json:"created_at"`
}

func NewRequestResponse(r *models.Request) RequestResponse {
	resp := RequestResponse{
		ID:         r.ID,
		Reference:  r.Reference,
		HospitalID: r.HospitalID,
		BloodType:  r.BloodType,
		Quantity:   r.Quantity,
		Urgency:    r.Urgency,
		Status:     r.Status,
		Notes:      r.Notes,
		AdminNotes: r.AdminNotes,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	resp.HospitalName = r.Hospital.User.Name
	if r.ResponseDate != nil {
		s := r.ResponseDate.Format(time.RFC3339)
		resp.ResponseDate = &s
	}
	return resp
}

func responses(reqs []models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, NewRequestResponse(&reqs[i]))
	}
	return out
}

// POST /api/requests
// POST /api/hospital/requests
func CreateRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateRequestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		h, err := profile.HospitalByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load hospital profile")
		}

		req, err := Create(database.DB, CreateInput{
			HospitalID: h.ID,
			BloodType:  body.BloodType,
			Quantity:   body.Quantity,
			Urgency:    body.Urgency,
			Notes:      body.Notes,
		})
		if err != nil {
			return apierr.From(err, "could not create request")
		}
		req.Hospital = *h

		return c.Status(fiber.StatusCreated).JSON(NewRequestResponse(req))
	}
}

// GET /api/requests?status=pending&start=2024-01-01&end=2024-01-31
func ListRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f ListFilter

		if s := c.Query("status"); s != "" {
			st, err := ParseStatus(s)
			if err != nil {
				return apierr.From(err, "invalid status")
			}
			f.Status = st
		}
		if s := c.Query("start"); s != "" {
			from, err := parseDate(s, false)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start must be 'YYYY-MM-DD' or RFC3339")
			}
			f.From = &from
		}
		if s := c.Query("end"); s != "" {
			to, err := parseDate(s, true)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end must be 'YYYY-MM-DD' or RFC3339")
			}
			f.To = &to
		}

		reqs, err := List(database.DB, f)
		if err != nil {
			return apierr.From(err, "could not list requests")
		}
		return c.JSON(responses(reqs))
	}
}

// GET /api/hospital/requests
func ListHospitalRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		h, err := profile.HospitalByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load hospital profile")
		}

		reqs, err := ListForHospital(database.DB, h.ID)
		if err != nil {
			return apierr.From(err, "could not list requests")
		}
		return c.JSON(responses(reqs))
	}
}

// PUT /api/requests/:id
func UpdateRequestStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request id")
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		target, err := ParseStatus(body.Status)
		if err != nil {
			return apierr.From(err, "invalid status")
		}

		before, err := Get(database.DB, uint(id))
		if err != nil {
			return apierr.From(err, "could not load request")
		}

		after, err := Transition(database.DB, uint(id), target, body.AdminNotes)
		if err != nil {
			return apierr.From(err, "could not update request")
		}

		if before.Status != after.Status {
			audit.Record(c, database.DB, audit.LogOptions{
				EntityType:  "request",
				EntityID:    after.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Request %s: %s -> %s", after.Reference, before.Status, after.Status),
				Before:      NewRequestResponse(before),
				After:       NewRequestResponse(after),
			})
		}

		return c.JSON(NewRequestResponse(after))
	}
}

// parseDate accepts a calendar date or an RFC3339 timestamp. A bare date used
// as an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
