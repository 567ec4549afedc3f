package idempotency

import (
	"net/http/httptest"
	"testing"
	"time"

	"bloodbank-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func guardedApp(store Store, h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	app.Post("/donations", func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		return c.Next()
	}, Guard(store, "donation"), h)
	return app
}

func post(t *testing.T, app *fiber.App, key string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/donations", nil)
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp.StatusCode
}

func TestGuard_ReleasesKeyAfterPanic(t *testing.T) {
	calls := 0
	app := guardedApp(NewMemoryStore(time.Hour), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	if got := post(t, app, "abc"); got != fiber.StatusInternalServerError {
		t.Fatalf("first attempt: want 500, got %d", got)
	}
	if got := post(t, app, "abc"); got != fiber.StatusCreated {
		t.Fatalf("retry after panic: want 201, got %d", got)
	}
	if got := post(t, app, "abc"); got != fiber.StatusConflict {
		t.Fatalf("repeat after success: want 409, got %d", got)
	}
}

func TestGuard_ReleasesKeyAfterError(t *testing.T) {
	calls := 0
	app := guardedApp(NewMemoryStore(time.Hour), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			return fiber.NewError(fiber.StatusBadRequest, "bad input")
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	if got := post(t, app, "k"); got != fiber.StatusBadRequest {
		t.Fatalf("first attempt: want 400, got %d", got)
	}
	if got := post(t, app, "k"); got != fiber.StatusCreated {
		t.Fatalf("retry: want 201, got %d", got)
	}
}

func TestGuard_NoHeaderPassesThrough(t *testing.T) {
	app := guardedApp(NewMemoryStore(time.Hour), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	for i := 0; i < 2; i++ {
		if got := post(t, app, ""); got != fiber.StatusCreated {
			t.Fatalf("attempt %d: want 201, got %d", i, got)
		}
	}
}
