// middleware/postback_guard.go
package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PostbackGuard protects the unauthenticated partner postback routes. When
// POSTBACK_ALLOWED_IPS is set (comma-separated), only those source
// addresses may call; otherwise requests pass and rely on the per-partner
// hash/signature checks in the handlers.
func PostbackGuard() fiber.Handler {
	allowedEnv := os.Getenv("POSTBACK_ALLOWED_IPS")
	allowed := map[string]bool{}
	for _, ip := range strings.Split(allowedEnv, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *fiber.Ctx) error {
		if len(allowed) == 0 {
			return c.Next()
		}

		ip := c.IP()
		if xff := c.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			ip = strings.TrimSpace(parts[0])
		}

		if !allowed[ip] {
			log.Printf("🚫 [POSTBACK_GUARD] rejected postback from %s on %s", ip, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "source address not allowed",
			})
		}
		return c.Next()
	}
}
