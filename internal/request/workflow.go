// Package request implements the lifecycle of a hospital's blood request:
//
//	pending -> approved -> fulfilled
//	pending -> rejected
//	pending -> fulfilled
//
// rejected and fulfilled are terminal. Fulfillment decrements inventory,
// appends a distribution to the ledger and flips the status inside one
// database transaction.
package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/inventory"
	"bloodbank-backend/internal/ledger"
	"bloodbank-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// open lists the statuses a request can still leave.
var open = []models.RequestStatus{models.RequestPending, models.RequestApproved}

// errNotClaimed means another writer moved the request out of an open status
// between our read and our conditional update.
var errNotClaimed = errors.New("request no longer open")

type CreateInput struct {
	HospitalID uint
	BloodType  string
	Quantity   int
	Urgency    string
	Notes      string
}

func ParseStatus(s string) (models.RequestStatus, error) {
	switch st := models.RequestStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case models.RequestPending, models.RequestApproved, models.RequestRejected, models.RequestFulfilled:
		return st, nil
	case "":
		return "", fmt.Errorf("%w: status is required", models.ErrValidation)
	default:
		return "", fmt.Errorf("%w: invalid status %q", models.ErrValidation, s)
	}
}

func ParseUrgency(s string) (models.Urgency, error) {
	switch u := models.Urgency(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return models.UrgencyMedium, nil
	case models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh:
		return u, nil
	default:
		return "", fmt.Errorf("%w: urgency must be low, medium or high", models.ErrValidation)
	}
}

// Create opens a pending request for a hospital.
func Create(db *gorm.DB, in CreateInput) (*models.Request, error) {
	if strings.TrimSpace(in.BloodType) == "" || in.Quantity == 0 {
		return nil, fmt.Errorf("%w: blood type and quantity are required", models.ErrValidation)
	}
	bt, err := models.ParseBloodType(in.BloodType)
	if err != nil {
		return nil, err
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", models.ErrValidation)
	}
	urgency, err := ParseUrgency(in.Urgency)
	if err != nil {
		return nil, err
	}

	req := models.Request{
		Reference:  uuid.NewString(),
		HospitalID: in.HospitalID,
		BloodType:  bt,
		Quantity:   in.Quantity,
		Urgency:    urgency,
		Status:     models.RequestPending,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := db.Create(&req).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return &req, nil
}

// Get loads a request with its hospital and the hospital's user.
func Get(db *gorm.DB, id uint) (*models.Request, error) {
	var req models.Request
	err := db.Preload("Hospital.User").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	return &req, nil
}

// Transition moves a request to target. Fulfilling an already fulfilled
// request is a no-op that returns the request unchanged. A failed
// fulfillment leaves inventory, ledger and status exactly as they were.
func Transition(db *gorm.DB, id uint, target models.RequestStatus, adminNotes string) (*models.Request, error) {
	req, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	adminNotes = strings.TrimSpace(adminNotes)
	now := time.Now()

	switch target {
	case models.RequestApproved, models.RequestRejected:
		if req.Status.Terminal() {
			return nil, fmt.Errorf("%w: request is already %s", models.ErrValidation, req.Status)
		}
		if err := claim(db, req.ID, target, adminNotes, now); err != nil {
			if errors.Is(err, errNotClaimed) {
				return nil, fmt.Errorf("%w: request is no longer open", models.ErrValidation)
			}
			return nil, err
		}

	case models.RequestFulfilled:
		switch req.Status {
		case models.RequestFulfilled:
			return req, nil
		case models.RequestRejected:
			return nil, fmt.Errorf("%w: a rejected request cannot be fulfilled", models.ErrValidation)
		}

		err := database.WithTx(db, func(tx *gorm.DB) error {
			return fulfill(tx, req, adminNotes, now)
		})
		if errors.Is(err, errNotClaimed) {
			// Lost the race. Report whatever the winner left behind.
			current, gerr := Get(db, id)
			if gerr != nil {
				return nil, gerr
			}
			if current.Status == models.RequestFulfilled {
				return current, nil
			}
			return nil, fmt.Errorf("%w: request is already %s", models.ErrValidation, current.Status)
		}
		if err != nil {
			return nil, err
		}

	case models.RequestPending:
		return nil, fmt.Errorf("%w: a request cannot move back to pending", models.ErrValidation)

	default:
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrValidation, target)
	}

	return Get(db, id)
}

// fulfill runs inside tx. The status flip comes first so a concurrent
// fulfillment of the same request blocks on the row and then finds it closed.
func fulfill(tx *gorm.DB, req *models.Request, adminNotes string, now time.Time) error {
	if err := claim(tx, req.ID, models.RequestFulfilled, adminNotes, now); err != nil {
		return err
	}

	if _, err := inventory.Adjust(tx, req.BloodType, req.Quantity, inventory.ModeSubtract); err != nil {
		return err
	}

	hospitalID := req.HospitalID
	_, err := ledger.Append(tx, ledger.Entry{
		Kind:       models.TransactionDistribution,
		BloodType:  req.BloodType,
		Quantity:   req.Quantity,
		HospitalID: &hospitalID,
		Date:       now,
		Notes:      fmt.Sprintf("Request %s fulfilled", req.Reference),
	})
	return err
}

// claim is a compare-and-swap on the status column: it only touches the row
// while the request is still open.
func claim(db *gorm.DB, id uint, target models.RequestStatus, adminNotes string, now time.Time) error {
	updates := map[string]any{
		"status":        target,
		"response_date": now,
		"updated_at":    now,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}

	res := db.Model(&models.Request{}).
		Where("id = ? AND status IN ?", id, open).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update request status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errNotClaimed
	}
	return nil
}

type ListFilter struct {
	Status     models.RequestStatus
	HospitalID *uint
	From       *time.Time
	To         *time.Time
	Limit      int
}

// List returns requests newest first.
func List(db *gorm.DB, f ListFilter) ([]models.Request, error) {
	q := db.Model(&models.Request{}).Preload("Hospital.User")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.HospitalID != nil {
		q = q.Where("hospital_id = ?", *f.HospitalID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.Request
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

// ListForHospital returns one hospital's requests newest first.
func ListForHospital(db *gorm.DB, hospitalID uint) ([]models.Request, error) {
	return List(db, ListFilter{HospitalID: &hospitalID})
}
