// handlers/admin_routes.go
package handlers

import (
	"coin-earning-system/middleware"
	"coin-earning-system/models"
	"coin-earning-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, withdrawals *services.WithdrawService, tasks *services.TaskService, fraud *services.FraudService, ledger *services.LedgerService, settings *services.SettingsService) {
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminGuard())

	admin.Get("/withdrawals", func(c *fiber.Ctx) error {
		requests, err := withdrawals.ListAll(c.Query("status"), c.Query("method"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"withdrawals": requests, "count": len(requests)})
	})

	admin.Get("/withdrawals/:id", func(c *fiber.Ctx) error {
		req, err := withdrawals.Get(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(req)
	})

	admin.Post("/withdrawals/:id/approve", func(c *fiber.Ctx) error {
		var body struct {
			AdminNote string `json:"admin_note"`
		}
		c.BodyParser(&body)

		req, err := withdrawals.Approve(c.Params("id"), body.AdminNote)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Withdrawal approved", "withdrawal": req})
	})

	admin.Post("/withdrawals/:id/reject", func(c *fiber.Ctx) error {
		var body struct {
			AdminNote string `json:"admin_note"`
		}
		c.BodyParser(&body)

		req, refunded, err := withdrawals.Reject(c.Params("id"), body.AdminNote)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message":        "Withdrawal rejected",
			"withdrawal":     req,
			"coins_refunded": refunded,
		})
	})

	admin.Post("/withdrawals/:id/mark-paid", func(c *fiber.Ctx) error {
		var body struct {
			AdminNote string `json:"admin_note"`
		}
		c.BodyParser(&body)

		req, err := withdrawals.MarkPaid(c.Params("id"), body.AdminNote)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Withdrawal marked as paid", "withdrawal": req})
	})

	admin.Post("/tasks", func(c *fiber.Ctx) error {
		var req struct {
			TaskType      string `json:"task_type"`
			Title         string `json:"title"`
			Description   string `json:"description"`
			RewardCoins   int64  `json:"reward_coins"`
			AdNetwork     string `json:"ad_network"`
			AdPlacementID string `json:"ad_placement_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		task, err := tasks.CreateTask(models.TaskType(req.TaskType), req.Title, req.Description, req.RewardCoins, req.AdNetwork, req.AdPlacementID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	})

	admin.Post("/tasks/:id/activate", func(c *fiber.Ctx) error {
		if err := tasks.SetTaskActive(c.Params("id"), true); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Task activated"})
	})

	admin.Post("/tasks/:id/deactivate", func(c *fiber.Ctx) error {
		if err := tasks.SetTaskActive(c.Params("id"), false); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "Task deactivated"})
	})

	admin.Get("/users/:id/fraud-events", func(c *fiber.Ctx) error {
		events, err := fraud.ListEvents(c.Params("id"), c.QueryInt("limit", 50))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"events": events, "count": len(events)})
	})

	admin.Post("/reconcile", func(c *fiber.Ctx) error {
		mismatched, err := ledger.ReconcileAll()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"mismatched_users": mismatched, "count": len(mismatched)})
	})

	admin.Put("/settings/:key", func(c *fiber.Ctx) error {
		var req struct {
			Value string `json:"value"`
		}
		if err := c.BodyParser(&req); err != nil || req.Value == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value is required"})
		}
		if err := settings.Set(c.Params("key"), req.Value); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"key": c.Params("key"), "value": req.Value})
	})
}
