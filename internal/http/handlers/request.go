package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"funkoshop/internal/domain"
	"funkoshop/internal/media"
	"funkoshop/internal/services"
	"funkoshop/internal/validate"
)

// payload reads the request body into the raw field map the services take.
// JSON numbers stay json.Number so prices keep their digits. For repeated
// form keys the last value wins.
func payload(c *fiber.Ctx) (map[string]any, error) {
	raw := map[string]any{}
	switch {
	case isJSON(c):
		if len(bytes.TrimSpace(c.Body())) == 0 {
			return raw, nil
		}
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, domain.Validation("Invalid JSON body")
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case isMultipart(c):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, domain.Validation("Invalid multipart body")
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				raw[k] = vs[len(vs)-1]
			}
		}
	default:
		// parsed from the body so PUT and DELETE forms work like POST
		vals, err := url.ParseQuery(string(c.Body()))
		if err != nil {
			return nil, domain.Validation("Invalid form body")
		}
		for k, vs := range vals {
			raw[k] = vs[len(vs)-1]
		}
	}
	return raw, nil
}

func isJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEApplicationJSON)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEMultipartForm)
}

func multipartForm(c *fiber.Ctx) *multipart.Form {
	if !isMultipart(c) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form
}

// fileUpload is the first file sent under key, or nil.
func fileUpload(c *fiber.Ctx, key string) media.Upload {
	form := multipartForm(c)
	if form == nil || len(form.File[key]) == 0 {
		return nil
	}
	return media.FromFileHeader(form.File[key][0])
}

func productUploads(c *fiber.Ctx) services.ProductUploads {
	form := multipartForm(c)
	if form == nil {
		return services.ProductUploads{}
	}
	up := services.ProductUploads{}
	if fhs := form.File["image_front"]; len(fhs) > 0 {
		up.Front = media.FromFileHeader(fhs[0])
	}
	if fhs := form.File["image_back"]; len(fhs) > 0 {
		up.Back = media.FromFileHeader(fhs[0])
	}
	for _, fh := range form.File["additional_images"] {
		up.Additional = append(up.Additional, media.FromFileHeader(fh))
	}
	return up
}

// pathID parses the :id route param. ok is false for anything that is not a
// positive integer.
func pathID(c *fiber.Ctx) (int64, bool) {
	return validate.ID(c.Params("id"))
}
