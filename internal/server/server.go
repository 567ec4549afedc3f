// Package server assembles the Fiber application and its routes.
package server

import (
	"errors"
	"log"
	"strings"

	"bloodbank-backend/internal/audit"
	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/config"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/donation"
	"bloodbank-backend/internal/idempotency"
	"bloodbank-backend/internal/inventory"
	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/profile"
	"bloodbank-backend/internal/reporting"
	"bloodbank-backend/internal/request"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	log.Println("Unexpected error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// New builds the application. database.DB must be initialized first.
func New(cfg *config.Config, idem idempotency.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + idempotency.HeaderKey,
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	app.Get("/health", healthHandler())

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/register/donor", auth.RegisterDonorHandler(cfg))
	api.Post("/auth/register/hospital", auth.RegisterHospitalHandler(cfg))
	api.Post("/auth/register/admin", auth.RegisterAdminHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	admin := auth.RequireRole(models.RoleAdmin)
	hospital := auth.RequireRole(models.RoleHospital)
	donor := auth.RequireRole(models.RoleDonor)

	// Requests
	protected.Post("/requests", hospital, request.CreateRequestHandler())
	protected.Get("/requests", admin, request.ListRequestsHandler())
	protected.Put("/requests/:id", admin, request.UpdateRequestStatusHandler())

	// Inventory
	protected.Get("/inventory", admin, inventory.GetInventoryHandler())
	protected.Post("/inventory", admin, inventory.AdjustInventoryHandler())

	// Reports
	protected.Get("/dashboard", admin, reporting.DashboardHandler())
	protected.Get("/statistics", admin, reporting.StatisticsHandler())
	protected.Get("/statistics/export", admin, reporting.ExportStatisticsHandler())
	protected.Get("/stats", admin, reporting.StatisticsHandler())
	protected.Get("/stats/inventory", admin, reporting.InventoryStatusHandler())

	// Directory and audit
	protected.Get("/bloodbank/donors", admin, profile.ListDonorsHandler())
	protected.Get("/bloodbank/hospitals", admin, profile.ListHospitalsHandler())
	protected.Get("/audit-logs", admin, audit.ListAuditLogsHandler())

	// Hospital
	hospitalRoutes := protected.Group("/hospital", hospital)
	hospitalRoutes.Get("/dashboard", reporting.HospitalDashboardHandler())
	hospitalRoutes.Get("/profile", profile.GetHospitalProfileHandler())
	hospitalRoutes.Put("/profile", profile.UpdateHospitalProfileHandler())
	hospitalRoutes.Get("/requests", request.ListHospitalRequestsHandler())
	hospitalRoutes.Post("/requests", request.CreateRequestHandler())
	hospitalRoutes.Get("/history", profile.HospitalHistoryHandler())

	// Donor
	protected.Get("/donor/profile", donor, profile.GetDonorProfileHandler())
	protected.Put("/donor/profile", donor, profile.UpdateDonorProfileHandler())
	protected.Post("/donations", donor, idempotency.Guard(idem, "donation"), donation.CreateDonationHandler())
	protected.Get("/donations/history", donor, donation.DonationHistoryHandler())

	return app
}

func healthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := database.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.Printf("[WARN] health: database: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": "up"})
	}
}
