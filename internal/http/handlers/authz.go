package handlers

import (
	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/domain"
	applog "funkoshop/internal/log"
	"funkoshop/internal/services"
)

// RequireUser rejects requests without a live session with 401 and stores
// the session's user under the "user" local.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "auth.session.fail", err, nil)
		}
		if err != nil || u == nil {
			if sid != "" {
				applog.Security(c, "access.denied", map[string]any{"reason": "unknown_session"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
