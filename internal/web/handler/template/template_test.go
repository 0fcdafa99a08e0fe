package template

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/store"
)

func setupApp(t *testing.T) (*fiber.App, store.Store) {
	t.Helper()

	cfg := &config.Config{
		Storage: config.Storage{
			DataDir:  t.TempDir(),
			FileName: "app.snapshot",
		},
		Webserver: config.Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	st := store.NewLocal(cfg)
	require.NoError(t, st.Init(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	app := fiber.New()
	s := Service{}
	require.NoError(t, s.Init(app, cfg, st))

	return app, st
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return resp, decoded
}

func TestDefaultTemplateRoundTrip(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/template", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "", body["template"], "absence reads as empty content")

	resp, body = doJSON(t, app, fiber.MethodPut, "/api/template", `{"template":"Hello {{DEALER_NAME}}"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/template", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello {{DEALER_NAME}}", body["template"])
}

func TestPutTemplateRequiresString(t *testing.T) {
	app, _ := setupApp(t)

	for _, body := range []string{`{}`, `{"template":null}`, `{"template":42}`} {
		resp, decoded := doJSON(t, app, fiber.MethodPut, "/api/template", body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "template must be string", decoded["error"])
	}
}

func TestKeyedTemplates(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, fiber.MethodPut, "/api/templates/greeting", `{"template":"Hi"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/templates/greeting", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hi", body["template"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/templates", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	infos, ok := body["templates"].([]any)
	require.True(t, ok)
	require.Len(t, infos, 1)
}

func TestDeleteTemplate(t *testing.T) {
	app, st := setupApp(t)

	require.NoError(t, st.SaveTemplate(context.Background(), "main", "keep"))
	require.NoError(t, st.SaveTemplate(context.Background(), "extra", "drop"))

	resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/templates/main", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "the default template is protected")

	resp, body := doJSON(t, app, fiber.MethodDelete, "/api/templates/extra", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/templates/extra", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRenameTemplate(t *testing.T) {
	app, st := setupApp(t)

	require.NoError(t, st.SaveTemplate(context.Background(), "old", "content"))

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/templates/old/rename", `{"to":"new"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/templates/new", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "content", body["template"])

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/templates/missing/rename", `{"to":"other"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "rename failed", body["error"])

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/templates/new/rename", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
