package reporting

import (
	"fmt"
	"time"

	"bloodbank-backend/internal/apierr"
	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/database"
	"bloodbank-backend/internal/profile"
	"bloodbank-backend/internal/request"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/dashboard
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(Dashboard(database.DB))
	}
}

// GET /api/statistics?status=fulfilled&limit=5
// GET /api/stats
func StatisticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := statsOptions(c)
		if err != nil {
			return err
		}
		return c.JSON(Statistics(database.DB, opts))
	}
}

// GET /api/stats/inventory
func InventoryStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(InventoryStatus(database.DB))
	}
}

// GET /api/statistics/export
func ExportStatisticsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := statsOptions(c)
		if err != nil {
			return err
		}

		buf, err := ExportStatistics(Statistics(database.DB, opts))
		if err != nil {
			return apierr.From(err, "could not export statistics")
		}

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="statistics-%s.xlsx"`, time.Now().Format("20060102")))
		return c.Send(buf.Bytes())
	}
}

// GET /api/hospital/dashboard
func HospitalDashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		h, err := profile.HospitalByUser(database.DB, userID)
		if err != nil {
			return apierr.From(err, "could not load hospital profile")
		}
		return c.JSON(HospitalDashboard(database.DB, h.ID))
	}
}

func statsOptions(c *fiber.Ctx) (StatsOptions, error) {
	var opts StatsOptions
	if s := c.Query("status"); s != "" {
		st, err := request.ParseStatus(s)
		if err != nil {
			return opts, apierr.From(err, "invalid status")
		}
		opts.RecentStatus = st
	}
	opts.RecentLimit = c.QueryInt("limit", defaultRecentLimit)
	return opts, nil
}
