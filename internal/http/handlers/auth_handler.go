package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"funkoshop/internal/dto"
	applog "funkoshop/internal/log"
	"funkoshop/internal/services"
	"funkoshop/internal/validate"
)

const sidCookie = "sid"

type AuthHandler struct {
	Auth *services.AuthService
}

// newSID issues a fresh session cookie. Login always rotates the id.
func newSID(c *fiber.Ctx) string {
	sid := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
	})
	return sid
}

func expireSID(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// POST /useraccount/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	raw, err := payload(c)
	if err != nil {
		return fail(c, "auth.login", err, nil)
	}
	email, _ := validate.Text(raw, "email")
	pass, _ := raw["password"].(string)
	if email == "" || pass == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing required fields. Required: email, password",
		})
	}

	u, err := h.Auth.Login(c.UserContext(), newSID(c), email, pass)
	if errors.Is(err, services.ErrBadCreds) {
		expireSID(c)
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if err != nil {
		expireSID(c)
		return fail(c, "auth.login", err, nil)
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	var roleName any
	if u.RoleName != "" {
		roleName = strings.ToLower(u.RoleName)
	}
	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"user_id":   u.ID,
		"email":     u.Email,
		"name":      u.Name,
		"lastname":  u.Lastname,
		"role_id":   u.RoleID,
		"role_name": roleName,
	})
}

// POST /useraccount/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	raw, err := payload(c)
	if err != nil {
		return fail(c, "auth.register", err, nil)
	}
	u, err := h.Auth.Register(c.UserContext(), raw)
	if err != nil {
		return fail(c, "auth.register", err, nil)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Register successful",
		"user_id": u.ID,
		"email":   u.Email,
		"role_id": u.RoleID,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Logout failed"})
	}
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		applog.Error(c, "auth.logout.fail", err, nil)
	}
	expireSID(c)
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// GET /useraccount/profile, behind RequireUser.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Profile failed"})
	}
	return c.JSON(fiber.Map{"message": "Profile successful", "user": dto.FromUser(*u)})
}
