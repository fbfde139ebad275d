package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/andredale-lab/One-Coffee/internal/auth"
)

// JWTAuth validates the bearer token and stores the authenticated user id
// in Locals("user_id"). Every core operation receives the actor from here,
// never from ambient state.
func JWTAuth(verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			// Websocket clients can't set headers from the browser.
			if t := c.Query("token"); t != "" {
				h = "Bearer " + t
			}
		}
		if h == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization"})
		}
		userID, err := verifier.Verify(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}
