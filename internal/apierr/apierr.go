// Package apierr converts domain errors into *fiber.Error values so the
// central ErrorHandler can render them.
package apierr

import (
	"errors"
	"log"

	"bloodbank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// From maps err to a fiber error. The message of a domain error is kept;
// anything unrecognised becomes a 500 with fallback as its message.
func From(err error, fallback string) error {
	if err == nil {
		return nil
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrAuth):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	log.Printf("%s: %v", fallback, err)
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}
