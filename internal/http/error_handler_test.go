package handlers_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"funkoshop/internal/http/handlers"
)

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})
	app.Get("/fiber-err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "stack: secret")
	})

	for _, path := range []string{"/err", "/fiber-err"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("test request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		s := string(body)
		if !strings.Contains(s, "Something went wrong") {
			t.Fatalf("friendly message missing; body=%s", s)
		}
		if strings.Contains(s, "secret") {
			t.Fatalf("internal details leaked to client; body=%s", s)
		}
	}
}

func TestErrorHandlerKeepsClientErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})

	resp, err := app.Test(httptest.NewRequest("GET", "/no-such-route", nil))
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		t.Fatalf("expected a JSON body, got %q", ct)
	}
}
