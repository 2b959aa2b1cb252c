// handlers/bonus_routes.go
package handlers

import (
	"coin-earning-system/middleware"
	"coin-earning-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBonusRoutes(app *fiber.App, bonuses *services.BonusService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/bonus/daily", func(c *fiber.Ctx) error {
		status, err := bonuses.DailyStatus(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(status)
	})

	secured.Post("/bonus/daily", func(c *fiber.Ctx) error {
		coins, err := bonuses.ClaimDaily(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message":     "Daily bonus claimed successfully",
			"bonus_coins": coins,
		})
	})

	secured.Get("/challenges", func(c *fiber.Ctx) error {
		list, err := bonuses.Challenges(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"challenges": list})
	})

	secured.Post("/challenges/claim", func(c *fiber.Ctx) error {
		var req struct {
			ChallengeID string `json:"challenge_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ChallengeID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "challenge_id is required"})
		}

		reward, err := bonuses.ClaimChallenge(currentUserID(c), req.ChallengeID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Challenge reward claimed!",
			"reward":  reward,
		})
	})
}
