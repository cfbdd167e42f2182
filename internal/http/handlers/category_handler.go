package handlers

import (
	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/dto"
	applog "funkoshop/internal/log"
	"funkoshop/internal/services"
)

type CategoryHandler struct {
	Categories *services.CategoryService
}

// GET /category
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Categories.List(c.UserContext())
	if err != nil {
		return fail(c, "category.list", err, nil)
	}
	return c.JSON(dto.FromCategories(cats))
}

// GET /category/by-license/:name
func (h *CategoryHandler) ListByLicence(c *fiber.Ctx) error {
	cats, err := h.Categories.ListByLicence(c.UserContext(), c.Params("name"))
	if err != nil {
		return fail(c, "category.list", err, nil)
	}
	return c.JSON(dto.FromCategories(cats))
}

// POST /category/create
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	raw, err := payload(c)
	if err != nil {
		return fail(c, "category.create", err, nil)
	}
	cat, err := h.Categories.Create(c.UserContext(), raw, fileUpload(c, "image_category"))
	if err != nil {
		return fail(c, "category.create", err, nil)
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Category created successfully",
		"category_id":   cat.ID,
		"category_name": cat.Name,
	})
}

// PUT|POST /category/update/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Category")
	}
	raw, err := payload(c)
	if err != nil {
		return fail(c, "category.update", err, nil)
	}
	cat, err := h.Categories.Update(c.UserContext(), id, raw, fileUpload(c, "image_category"))
	if err != nil {
		return fail(c, "category.update", err, nil)
	}
	applog.Audit(c, "category.update", map[string]any{"category_id": cat.ID})
	return c.JSON(fiber.Map{
		"message":       "Category updated successfully",
		"category_id":   cat.ID,
		"category_name": cat.Name,
	})
}

// DELETE|POST /category/delete/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Category")
	}
	cat, n, err := h.Categories.Delete(c.UserContext(), id)
	if err != nil {
		var extra fiber.Map
		if cat != nil {
			extra = fiber.Map{"category_id": cat.ID, "category_name": cat.Name, "products_count": n}
		}
		return fail(c, "category.delete", err, extra)
	}
	applog.Audit(c, "category.delete", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return c.JSON(fiber.Map{
		"message":       "Category deleted successfully",
		"category_id":   cat.ID,
		"category_name": cat.Name,
	})
}
