package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/domain"
	applog "funkoshop/internal/log"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes {"message": ...} plus extra with the status of err. Client
// mistakes are not logged as errors; conflicts are noted at info.
func fail(c *fiber.Ctx, action string, err error, extra fiber.Map) error {
	status := statusFor(err)
	c.Status(status)
	switch {
	case errors.Is(err, domain.ErrConflict):
		applog.Info(c, action+".conflict", map[string]any{"reason": domain.Message(err)})
	case status == fiber.StatusInternalServerError:
		applog.Error(c, action+".fail", err, nil)
	}

	body := fiber.Map{"message": domain.Message(err)}
	if status == fiber.StatusInternalServerError && !errors.Is(err, domain.ErrStorage) {
		body["message"] = "Something went wrong. Please try again."
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

func badID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": what + " not found"})
}
