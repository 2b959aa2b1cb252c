// handlers/user_routes.go
package handlers

import (
	"coin-earning-system/middleware"
	"coin-earning-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, referrals *services.ReferralService, analytics *services.AnalyticsService, bonuses *services.BonusService) {
	// Registration arrives through the gateway before a user context
	// exists.
	app.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			Username     string `json:"username"`
			Email        string `json:"email"`
			Phone        string `json:"phone"`
			DeviceID     string `json:"device_id"`
			ReferralCode string `json:"referral_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		user, err := referrals.Register(req.Username, req.Email, req.Phone, req.DeviceID, req.ReferralCode)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/me", func(c *fiber.Ctx) error {
		user, err := referrals.Get(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Get("/user/referrals", func(c *fiber.Ctx) error {
		out, err := referrals.Analytics(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(out)
	})

	secured.Get("/user/analytics", func(c *fiber.Ctx) error {
		out, err := analytics.UserOverview(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(out)
	})

	secured.Get("/user/achievements", func(c *fiber.Ctx) error {
		out, err := analytics.Achievements(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"achievements": out})
	})

	// Called on login or dashboard visit; updates the streak at most once
	// per day.
	secured.Post("/user/login-streak", func(c *fiber.Ctx) error {
		out, err := bonuses.RecordLogin(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(out)
	})
}
