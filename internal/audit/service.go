package audit

import (
	"encoding/json"
	"fmt"
	"log"

	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(db *gorm.DB, opts LogOptions) error {
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record fills in the acting user from the request context and writes the
// entry. Audit failures never fail the request.
func Record(c *fiber.Ctx, db *gorm.DB, opts LogOptions) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		log.Printf("[WARN] audit: no user on request: %v", err)
		return
	}
	opts.UserID = userID

	var user models.User
	if err := db.Select("id", "name").First(&user, userID).Error; err == nil {
		opts.UserName = user.Name
	}

	if err := WriteLog(db, opts); err != nil {
		log.Printf("[WARN] audit: %v", err)
	}
}
