// handlers/respond.go
package handlers

import (
	"errors"
	"log"

	"coin-earning-system/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps core service errors to HTTP responses. Anything unrecognized is
// a fatal storage error: logged, surfaced as 500, never retried here.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrChallengeIncomplete):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrLimitReached),
		errors.Is(err, services.ErrEarningLimitReached),
		errors.Is(err, services.ErrTaskTooFast):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrAlreadyCompleted),
		services.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ [HTTP] internal error on %s: %v", c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// currentUserID reads the gateway-provided user id from the request
// context.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
