// handlers/offerwall_routes.go
package handlers

import (
	"os"
	"strconv"
	"strings"

	"coin-earning-system/middleware"
	"coin-earning-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupOfferwallRoutes(app *fiber.App, offerwall *services.OfferwallService, referrals *services.ReferralService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/offerwall/cpx/url", func(c *fiber.Ctx) error {
		url, err := services.BuildCPXWallURL(currentUserID(c))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"url": url})
	})

	secured.Get("/offerwall/tapjoy/url", func(c *fiber.Ctx) error {
		url, err := services.BuildTapjoyWallURL(currentUserID(c))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"url": url})
	})

	// Partner postbacks are server-to-server and unauthenticated; they are
	// protected by the source guard plus per-partner hash/signature checks,
	// and must stay tolerant of retries: a replayed transaction id is a
	// successful duplicate acknowledgment, never an error.
	postbacks := app.Group("/postbacks", middleware.PostbackGuard())

	postbacks.Get("/cpx", func(c *fiber.Ctx) error {
		transID := c.Query("trans_id")
		if transID == "" {
			transID = c.Query("transaction_id")
		}
		extUserID := c.Query("ext_user_id")
		if transID == "" || extUserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing trans_id or ext_user_id"})
		}

		if os.Getenv("CPX_SECURITY_HASH") != "" {
			if !services.VerifyCPXHash(extUserID, c.Query("secure_hash")) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid secure_hash"})
			}
		}

		user, err := referrals.Get(extUserID)
		if err != nil {
			return fail(c, err)
		}

		amount, _ := strconv.ParseFloat(c.Query("amount", "0"), 64)
		status, err := strconv.Atoi(c.Query("status", "1"))
		if err != nil {
			status = 1
		}
		event := strings.ToLower(c.Query("event", "complete"))

		result, err := offerwall.CreditCPX(transID, user.ID, event, status, int64(amount))
		if err != nil {
			return fail(c, err)
		}
		if result.Duplicate {
			return c.JSON(fiber.Map{"ok": true, "duplicate": true})
		}
		return c.JSON(fiber.Map{
			"ok":       true,
			"credited": result.Credited,
			"reversed": result.Reversed,
			"event":    event,
		})
	})

	tapjoyHandler := func(c *fiber.Ctx) error {
		var userID, currency, transactionID, signature string
		if c.Method() == fiber.MethodPost {
			var req struct {
				UserID        string `json:"user_id"`
				Currency      string `json:"currency"`
				Amount        string `json:"amount"`
				TransactionID string `json:"transaction_id"`
				TransID       string `json:"trans_id"`
				Signature     string `json:"signature"`
			}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
			}
			userID, currency, signature = req.UserID, req.Currency, req.Signature
			if currency == "" {
				currency = req.Amount
			}
			transactionID = req.TransactionID
			if transactionID == "" {
				transactionID = req.TransID
			}
		} else {
			userID = c.Query("user_id")
			currency = c.Query("currency", c.Query("amount", "0"))
			transactionID = c.Query("transaction_id", c.Query("trans_id"))
			signature = c.Query("signature")
		}

		if transactionID == "" || userID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing transaction_id or user_id"})
		}

		if os.Getenv("TAPJOY_SECRET_KEY") != "" && signature != "" {
			if !services.VerifyTapjoySignature(string(c.Body()), signature) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
			}
		}

		user, err := referrals.Get(userID)
		if err != nil {
			return fail(c, err)
		}

		amount, _ := strconv.ParseFloat(currency, 64)

		result, err := offerwall.CreditTapjoy(transactionID, user.ID, int64(amount))
		if err != nil {
			return fail(c, err)
		}
		if result.Duplicate {
			return c.JSON(fiber.Map{"ok": true, "duplicate": true})
		}
		return c.JSON(fiber.Map{"ok": true, "coins_added": result.Credited})
	}

	postbacks.Get("/tapjoy", tapjoyHandler)
	postbacks.Post("/tapjoy", tapjoyHandler)
}
