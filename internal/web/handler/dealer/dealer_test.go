package dealer

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
	"github.com/dealerdesk/dealerdesk/internal/db/models"
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

func TestDealerCRUDFlow(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/dealers",
		`{"name":"Test Dealer","address":"1 Test Way","number":"123","brand":"BrandX"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created, ok := body["dealer"].(map[string]any)
	require.True(t, ok)

	id, ok := created["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	assert.Equal(t, "Test Dealer", created["name"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/dealers", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	dealers, ok := body["dealers"].([]any)
	require.True(t, ok)
	require.Len(t, dealers, 1)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/dealers/"+id, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Test Dealer", body["dealer"].(map[string]any)["name"])

	resp, body = doJSON(t, app, fiber.MethodPut, "/api/dealers/"+id, `{"address":"2 New Way"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated := body["dealer"].(map[string]any)
	assert.Equal(t, "2 New Way", updated["address"])
	assert.Equal(t, "Test Dealer", updated["name"], "unset fields are kept")

	resp, body = doJSON(t, app, fiber.MethodDelete, "/api/dealers/"+id, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/dealers/"+id, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/dealers/"+id, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateDealerRejectsMissingName(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/dealers", `{"address":"1 Test Way"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "name required", body["error"])
}

func TestCreateDealerRejectsDuplicateName(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/dealers", `{"name":"Acme"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/dealers", `{"name":"ACME"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "dealer already exists", body["error"])
}

func TestUpdateDealerNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, fiber.MethodPut, "/api/dealers/missing", `{"name":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRenderDealer(t *testing.T) {
	app, st := setupApp(t)

	require.NoError(t, st.SaveTemplate(context.Background(), models.DefaultTemplateKey,
		"Dealer: {{DEALER_NAME}}\nBrand: {{BRAND}}\n"))

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/dealers",
		`{"name":"Test Dealer","brand":"BrandX"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	id := body["dealer"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/dealers/"+id+"/render", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	rendered, ok := body["rendered"].(string)
	require.True(t, ok)
	assert.Contains(t, rendered, "Dealer: Test Dealer")
	assert.Contains(t, rendered, "Brand: BrandX")
	assert.NotContains(t, rendered, "{{")

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/dealers/missing/render", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestImportDealers(t *testing.T) {
	app, st := setupApp(t)

	_, err := st.CreateDealer(context.Background(), store.DealerFields{Name: "Existing Motors"})
	require.NoError(t, err)

	payload := `[
		{"name":"existing motors"},
		{"name":"Acme Motors","address":"1 Main St","brand":"BrandX"},
		{"Dealer Name":"Legacy Format","Number":"556"}
	]`

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/dealers/import", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["inserted"])

	// the wrapped export format works too
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/dealers/import",
		`{"dealers":[{"name":"Fourth Dealer"}]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["inserted"])

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/dealers/import", `"not a list"`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
