package handlers

import (
	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/dto"
	applog "funkoshop/internal/log"
	"funkoshop/internal/services"
)

// UserAdminHandler serves account management under /useraccount.
type UserAdminHandler struct {
	Users *services.UserService
}

// GET /useraccount/list
func (h *UserAdminHandler) List(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return fail(c, "admin.users.list", err, nil)
	}
	return c.JSON(fiber.Map{"users": dto.FromUsers(users)})
}

// GET /useraccount/roles
func (h *UserAdminHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.Users.Roles(c.UserContext())
	if err != nil {
		return fail(c, "admin.roles.list", err, nil)
	}
	return c.JSON(fiber.Map{"roles": dto.FromRoles(roles)})
}

// POST /useraccount/create
func (h *UserAdminHandler) Create(c *fiber.Ctx) error {
	raw, err := payload(c)
	if err != nil {
		return fail(c, "admin.users.create", err, nil)
	}
	u, err := h.Users.Create(c.UserContext(), raw)
	if err != nil {
		return fail(c, "admin.users.create", err, nil)
	}
	applog.Audit(c, "admin.users.create", map[string]any{"user_id": u.ID, "role_id": u.RoleID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    dto.FromUser(*u),
	})
}

// PUT|POST /useraccount/update/:id
func (h *UserAdminHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "User")
	}
	raw, err := payload(c)
	if err != nil {
		return fail(c, "admin.users.update", err, nil)
	}
	u, err := h.Users.Update(c.UserContext(), id, raw)
	if err != nil {
		return fail(c, "admin.users.update", err, nil)
	}
	applog.Audit(c, "admin.users.update", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    dto.FromUser(*u),
	})
}

// DELETE|POST /useraccount/delete/:id
func (h *UserAdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "User")
	}
	if err := h.Users.Delete(c.UserContext(), id); err != nil {
		return fail(c, "admin.users.delete", err, nil)
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.JSON(fiber.Map{"message": "User deleted successfully", "user_id": id})
}
