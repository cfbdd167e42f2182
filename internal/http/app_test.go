package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"funkoshop/internal/config"
	"funkoshop/internal/http/handlers"
	"funkoshop/internal/repos"
)

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	media string
}

// newTestApp mounts every route over an in-memory database and a temp media
// root, with the production error handler and a 1 MiB body limit.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{DBDriver: "sqlite", DBDSN: ":memory:", MediaDir: t.TempDir(), MaxUploadMB: 1}
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.MaxUploadMB << 20,
	})
	app.Use(requestid.New())
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	handlers.Register(app, handlers.NewDeps(db, cfg, nil))
	return &testApp{app: app, db: db, media: cfg.MediaDir}
}

// do runs req without the default one-second test timeout; bcrypt at cost 12
// can exceed it on slow machines.
func (ta *testApp) do(t *testing.T, req *http.Request) (*http.Response, any) {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body any
	if len(b) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(b, &body), "body: %s", b)
	}
	return resp, body
}

// obj is do for endpoints answering with a JSON object.
func (ta *testApp) obj(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, body := ta.do(t, req)
	m, _ := body.(map[string]any)
	return resp.StatusCode, m
}

// list is do for endpoints answering with a JSON array.
func (ta *testApp) list(t *testing.T, req *http.Request) []any {
	t.Helper()
	resp, body := ta.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	arr, ok := body.([]any)
	require.True(t, ok, "expected an array, got %T", body)
	return arr
}

func form(method, path string, vals url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return req
}

func jsonBody(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

type file struct {
	field, name string
	data        []byte
}

func multipartReq(t *testing.T, method, path string, vals map[string]string, files ...file) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range vals {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pikachuForm() url.Values {
	return url.Values{
		"product_name":        {"Pikachu"},
		"product_description": {"Pikachu Smiley"},
		"price":               {"49.99"},
		"stock":               {"7"},
		"sku":                 {"PKM-001"},
		"licence_name":        {"Pokemon"},
		"category_name":       {"Figuras"},
	}
}

func idOf(t *testing.T, m map[string]any, key string) string {
	t.Helper()
	f, ok := m[key].(float64)
	require.True(t, ok, "%s missing from %v", key, m)
	return strconv.FormatInt(int64(f), 10)
}
