package handlers

import (
	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/domain"
	"funkoshop/internal/dto"
	applog "funkoshop/internal/log"
	"funkoshop/internal/services"
)

type ProductHandler struct {
	Products *services.ProductService
}

// POST /product/create
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	raw, err := payload(c)
	if err != nil {
		return fail(c, "product.create", err, nil)
	}
	p, meta, err := h.Products.CreateWithUploads(c.UserContext(), raw, productUploads(c))
	if err != nil {
		return fail(c, "product.create", err, nil)
	}
	applog.Audit(c, "product.create", map[string]any{
		"product_id": p.ID, "sku": p.SKU,
		"licence_created": meta.Licence.Created, "category_created": meta.Category.Created,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Product created successfully",
		"product_id":   p.ID,
		"product_name": p.Name,
		"licence":      meta.Licence,
		"category":     meta.Category,
	})
}

// GET /product/list
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Products.List(c.UserContext())
	if err != nil {
		return fail(c, "product.list", err, nil)
	}
	return c.JSON(dto.FromProducts(ps))
}

// GET /product/list/category/:name
func (h *ProductHandler) ListByCategory(c *fiber.Ctx) error {
	ps, err := h.Products.ListByCategory(c.UserContext(), c.Params("name"))
	if err != nil {
		return fail(c, "product.list", err, nil)
	}
	return c.JSON(dto.FromProducts(ps))
}

// GET /product/list/license/:name
func (h *ProductHandler) ListByLicence(c *fiber.Ctx) error {
	ps, err := h.Products.ListByLicence(c.UserContext(), c.Params("name"))
	if err != nil {
		return fail(c, "product.list", err, nil)
	}
	return c.JSON(dto.FromProducts(ps))
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Product")
	}
	return h.one(c, func() (*domain.Product, error) { return h.Products.Get(c.UserContext(), id) })
}

func (h *ProductHandler) FindByName(c *fiber.Ctx) error {
	name := c.Params("name")
	return h.one(c, func() (*domain.Product, error) { return h.Products.GetByName(c.UserContext(), name) })
}

func (h *ProductHandler) FindBySKU(c *fiber.Ctx) error {
	sku := c.Params("sku")
	return h.one(c, func() (*domain.Product, error) { return h.Products.GetBySKU(c.UserContext(), sku) })
}

func (h *ProductHandler) one(c *fiber.Ctx, get func() (*domain.Product, error)) error {
	p, err := get()
	if err != nil {
		return fail(c, "product.find", err, nil)
	}
	return c.JSON(dto.FromProduct(*p, true))
}

// PUT|POST /product/update/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Product")
	}
	raw, err := payload(c)
	if err != nil {
		return fail(c, "product.update", err, nil)
	}
	p, err := h.Products.Update(c.UserContext(), id, raw, productUploads(c))
	if err != nil {
		return fail(c, "product.update", err, nil)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID, "fields": len(raw)})
	return c.JSON(fiber.Map{
		"message":      "Product updated successfully",
		"product_id":   p.ID,
		"product_name": p.Name,
	})
}

// DELETE|POST /product/delete/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c, "Product")
	}
	p, err := h.Products.Delete(c.UserContext(), id)
	if err != nil {
		return fail(c, "product.delete", err, nil)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": p.ID, "sku": p.SKU})
	return c.JSON(fiber.Map{
		"message":      "Product deleted successfully",
		"product_id":   p.ID,
		"product_name": p.Name,
	})
}
