package inventory

import (
	"fmt"
	"time"

	"bloodbank-backend/internal/apierr"
	"bloodbank-backend/internal/audit"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ItemResponse struct {
	BloodType   models.BloodType `json:"blood_type"`
	Quantity    int              `json:"quantity"`
	LastUpdated string           `json:"last_updated"`
}

type AdjustRequest struct {
	BloodType string `json:"blood_type"`
	Quantity  int    `json:"quantity"`
	Action    string `json:"action"` // "add" | "subtract"
}

func NewItemResponse(it models.InventoryItem) ItemResponse {
	return ItemResponse{
		BloodType:   it.BloodType,
		Quantity:    it.Quantity,
		LastUpdated: it.LastUpdated.Format(time.RFC3339),
	}
}

func ItemResponses(items []models.InventoryItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewItemResponse(it))
	}
	return out
}

// GET /api/inventory
func GetInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		bank, err := Get(database.DB)
		if err != nil {
			return apierr.From(err, "could not load inventory")
		}
		return c.JSON(ItemResponses(bank.Items))
	}
}

// POST /api/inventory
func AdjustInventoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.BloodType == "" || body.Quantity == 0 || body.Action == "" {
			return fiber.NewError(fiber.StatusBadRequest, "blood_type, quantity and action are required")
		}

		mode, err := ParseMode(body.Action)
		if err != nil {
			return apierr.From(err, "invalid action")
		}
		bt, err := models.ParseBloodType(body.BloodType)
		if err != nil {
			return apierr.From(err, "invalid blood type")
		}

		before := 0
		var prev models.InventoryItem
		if err := database.DB.Where("blood_type = ?", bt).First(&prev).Error; err == nil {
			before = prev.Quantity
		}

		item, err := Adjust(database.DB, bt, body.Quantity, mode)
		if err != nil {
			return apierr.From(err, "could not update inventory")
		}

		audit.Record(c, database.DB, audit.LogOptions{
			EntityType:  "inventory",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Inventory %s %s %d", bt, mode, body.Quantity),
			Before:      map[string]any{"blood_type": bt, "quantity": before},
			After:       map[string]any{"blood_type": bt, "quantity": item.Quantity},
		})

		bank, err := Get(database.DB)
		if err != nil {
			return apierr.From(err, "could not load inventory")
		}
		return c.JSON(ItemResponses(bank.Items))
	}
}
