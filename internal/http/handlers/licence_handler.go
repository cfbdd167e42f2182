package handlers

import (
	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/dto"
	applog "funkoshop/internal/log"
	"funkoshop/internal/services"
)

type LicenceHandler struct {
	Licences *services.LicenceService
}

// GET /licence
func (h *LicenceHandler) List(c *fiber.Ctx) error {
	ls, err := h.Licences.List(c.UserContext())
	if err != nil {
		return fail(c, "licence.list", err, nil)
	}
	return c.JSON(dto.FromLicences(ls))
}

// GET /licence/:name matches by case-insensitive substring.
func (h *LicenceHandler) Search(c *fiber.Ctx) error {
	ls, err := h.Licences.SearchByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return fail(c, "licence.search", err, nil)
	}
	return c.JSON(dto.FromLicences(ls))
}

func (h *LicenceHandler) Create(c *fiber.Ctx) error {
	raw, err := payload(c)
	if err != nil {
		return fail(c, "licence.create", err, nil)
	}
	l, err := h.Licences.Create(c.UserContext(), raw, fileUpload(c, "licence_image"))
	if err != nil {
		return fail(c, "licence.create", err, nil)
	}
	applog.Audit(c, "licence.create", map[string]any{"licence_id": l.ID, "name": l.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Licence created successfully",
		"licence_id":   l.ID,
		"licence_name": l.Name,
	})
}

func (h *LicenceHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Licence")
	}
	raw, err := payload(c)
	if err != nil {
		return fail(c, "licence.update", err, nil)
	}
	l, err := h.Licences.Update(c.UserContext(), id, raw, fileUpload(c, "licence_image"))
	if err != nil {
		return fail(c, "licence.update", err, nil)
	}
	applog.Audit(c, "licence.update", map[string]any{"licence_id": l.ID})
	return c.JSON(fiber.Map{
		"message":      "Licence updated successfully",
		"licence_id":   l.ID,
		"licence_name": l.Name,
	})
}

func (h *LicenceHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Licence")
	}
	l, n, err := h.Licences.Delete(c.UserContext(), id)
	if err != nil {
		var extra fiber.Map
		if l != nil {
			extra = fiber.Map{"licence_id": l.ID, "licence_name": l.Name, "products_count": n}
		}
		return fail(c, "licence.delete", err, extra)
	}
	applog.Audit(c, "licence.delete", map[string]any{"licence_id": l.ID, "name": l.Name})
	return c.JSON(fiber.Map{
		"message":      "Licence deleted successfully",
		"licence_id":   l.ID,
		"licence_name": l.Name,
	})
}
