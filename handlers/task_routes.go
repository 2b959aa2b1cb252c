// handlers/task_routes.go
package handlers

import (
	"coin-earning-system/middleware"
	"coin-earning-system/services"
	"coin-earning-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, tasks *services.TaskService, referrals *services.ReferralService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/tasks", func(c *fiber.Ctx) error {
		list, err := tasks.ListActive()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Post("/tasks/:id/start", func(c *fiber.Ctx) error {
		user, err := referrals.Get(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}

		var req struct {
			DeviceID string `json:"device_id"`
		}
		_ = c.BodyParser(&req)

		userTask, err := tasks.Start(user, c.Params("id"), utils.ClientIP(c), req.DeviceID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":      "Task started",
			"user_task_id": userTask.ID,
			"task":         userTask.Task,
		})
	})

	secured.Post("/user-tasks/:id/complete", func(c *fiber.Ctx) error {
		reward, err := tasks.Complete(currentUserID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      "Task completed",
			"reward_coins": reward,
		})
	})

	// Instant game tasks: no countdown, reward decided by the per-type
	// policy, once per task per day.
	secured.Post("/games/:id/complete", func(c *fiber.Ctx) error {
		user, err := referrals.Get(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}

		var req struct {
			DeviceID string `json:"device_id"`
		}
		_ = c.BodyParser(&req)

		reward, err := tasks.CompleteGame(user, c.Params("id"), utils.ClientIP(c), req.DeviceID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message":      "Task completed successfully",
			"reward_coins": reward,
		})
	})
}
