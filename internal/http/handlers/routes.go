package handlers

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "funkoshop/internal/log"
)

// ErrorHandler answers anything a handler returned instead of writing with a
// JSON message. Internal details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			applog.Security(c, "request.too_large", nil)
		}
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong. Please try again.",
	})
}

// Media serves files under root, refusing anything that could step outside it.
func Media(root string) fiber.Handler {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// encoded traversal as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(root, clean), true)
	}
}

func loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many attempts. Please try again later.",
			})
		},
	})
}

// Register mounts the catalog and account routes. Updates accept PUT or POST
// and deletes DELETE or POST.
func Register(app *fiber.App, d *Deps) {
	p := d.ProductHandler
	app.Post("/product/create", p.Create)
	app.Get("/product/list", p.List)
	app.Get("/product/list/category/:name", p.ListByCategory)
	app.Get("/product/list/license/:name", p.ListByLicence)
	app.Get("/product/find/id/:id", p.FindByID)
	app.Get("/product/find/name/:name", p.FindByName)
	app.Get("/product/find/sku/:sku", p.FindBySKU)
	app.Put("/product/update/:id", p.Update)
	app.Post("/product/update/:id", p.Update)
	app.Delete("/product/delete/:id", p.Delete)
	app.Post("/product/delete/:id", p.Delete)

	cat := d.CategoryHandler
	app.Post("/category/create", cat.Create)
	app.Get("/category", cat.List)
	app.Get("/category/by-license/:name", cat.ListByLicence)
	app.Put("/category/update/:id", cat.Update)
	app.Post("/category/update/:id", cat.Update)
	app.Delete("/category/delete/:id", cat.Delete)
	app.Post("/category/delete/:id", cat.Delete)

	lic := d.LicenceHandler
	app.Post("/licence/create", lic.Create)
	app.Get("/licence", lic.List)
	app.Get("/licence/:name", lic.Search)
	app.Put("/licence/update/:id", lic.Update)
	app.Post("/licence/update/:id", lic.Update)
	app.Delete("/licence/delete/:id", lic.Delete)
	app.Post("/licence/delete/:id", lic.Delete)

	acct := app.Group("/useraccount")
	acct.Post("/login", loginLimiter(), d.AuthHandler.Login)
	acct.Post("/register", d.AuthHandler.Register)
	acct.Post("/logout", d.AuthHandler.Logout)
	acct.Get("/profile", RequireUser(d.Auth), d.AuthHandler.Profile)

	u := d.UserAdminHandler
	acct.Get("/list", u.List)
	acct.Get("/roles", u.Roles)
	acct.Post("/create", u.Create)
	acct.Put("/update/:id", u.Update)
	acct.Post("/update/:id", u.Update)
	acct.Delete("/delete/:id", u.Delete)
	acct.Post("/delete/:id", u.Delete)
}
