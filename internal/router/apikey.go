package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware gates server-to-server callers (the device sync agent,
// admin tooling) behind a shared key. When no key is configured the gate is
// open, which keeps local development friction-free.
func APIKeyMiddleware(expected string) fiber.Handler {
	expected = strings.TrimSpace(expected)

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		if expected == "" {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("X-API-Key"))
		if key == "" || key != expected {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing_api_key"})
		}
		return c.Next()
	}
}
