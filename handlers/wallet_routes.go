// handlers/wallet_routes.go
package handlers

import (
	"strconv"

	"coin-earning-system/middleware"
	"coin-earning-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func SetupWalletRoutes(app *fiber.App, ledger *services.LedgerService, withdrawals *services.WithdrawService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/wallet", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		view, err := ledger.Wallet(currentUserID(c), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(view)
	})

	secured.Post("/withdrawals", func(c *fiber.Ctx) error {
		var req struct {
			AmountRs  string `json:"amount_rs"`
			Method    string `json:"method"`
			AccountID string `json:"account_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.AmountRs == "" || req.Method == "" || req.AccountID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "amount_rs, method, account_id are required",
			})
		}

		amount, err := decimal.NewFromString(req.AmountRs)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		}

		withdrawal, err := withdrawals.Create(currentUserID(c), amount, req.Method, req.AccountID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "Withdraw request created",
			"withdrawal": withdrawal,
		})
	})

	secured.Get("/withdrawals", func(c *fiber.Ctx) error {
		reqs, err := withdrawals.ListForUser(currentUserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reqs)
	})
}
