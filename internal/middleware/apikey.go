package middleware

import (
	"crypto/subtle"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/config"
	"github.com/gofiber/fiber/v2"
)

// APIKeyRequired guards the internal routes used by write-path collaborators.
// With no key configured, internal routes are disabled outright.
func APIKeyRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.InternalAPIKey == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Internal API disabled",
			})
		}

		apiKey := c.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.InternalAPIKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing API key",
			})
		}

		return c.Next()
	}
}
