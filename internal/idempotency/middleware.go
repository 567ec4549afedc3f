package idempotency

import (
	"fmt"
	"log"
	"strings"

	"bloodbank-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const HeaderKey = "Idempotency-Key"

// Guard rejects a repeated Idempotency-Key from the same user with 409. The
// key is released again when the guarded handler fails or panics so the client
// can retry.
// Requests without the header pass through.
func Guard(store Store, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(HeaderKey))
		if raw == "" {
			return c.Next()
		}
		if len(raw) > 255 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key is too long")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s:%d:%s", scope, userID, raw)

		ctx := c.UserContext()
		ok, err := store.Claim(ctx, key)
		if err != nil {
			log.Printf("[WARN] idempotency claim %q: %v", key, err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
		}
		if !ok {
			return fiber.NewError(fiber.StatusConflict, "duplicate request")
		}

		release := func() {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Printf("[WARN] idempotency release %q: %v", key, rerr)
			}
		}
		defer func() {
			if r := recover(); r != nil {
				release()
				panic(r)
			}
		}()

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			release()
		}
		return err
	}
}
