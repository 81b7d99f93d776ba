package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method   string
	path     string
	rawQuery string
	apiKey   string
	hasKey   bool
	ctype    string
	body     string
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.rawQuery = r.URL.RawQuery
		got.apiKey = r.Header.Get("X-API-Key")
		_, got.hasKey = r.Header["X-Api-Key"]
		got.ctype = r.Header.Get("Content-Type")
		got.body = string(payload)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newProxyApp(backendURL, apiKey string) *fiber.App {
	app := fiber.New()
	h := NewProxyHandler(backendURL, "v1", apiKey, "/api", nil)
	app.All("/api/*", h.Handle)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestProxy_ForwardsWithAPIKey(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{"data":[{"id":1}]}`)
	app := newProxyApp(srv.URL, "server-secret")

	req := httptest.NewRequest(http.MethodGet, "/api/companies/?page=2&per_page=12&search=Apple", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/v1/companies/", got.path)
	assert.Equal(t, "page=2&per_page=12&search=Apple", got.rawQuery)
	assert.Equal(t, "server-secret", got.apiKey)
	assert.Equal(t, "application/json", got.ctype)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decodeBody(t, resp)
	assert.Len(t, body["data"], 1)
}

func TestProxy_NoAPIKeyHeaderWhenUnset(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, `{"ok":true}`)
	app := newProxyApp(srv.URL, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/analytics/overview", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, got.hasKey)
}

func TestProxy_RelaysBackendStatus(t *testing.T) {
	srv, _ := newBackend(t, http.StatusNotFound, `{"detail":"Company not found"}`)
	app := newProxyApp(srv.URL, "k")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/999", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Company not found", decodeBody(t, resp)["detail"])
}

func TestProxy_InvalidBackendJSONIsInternalError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"html on success", http.StatusOK, `<html>ok</html>`},
		{"html on error", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"empty body", http.StatusNoContent, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, tt.status, tt.body)
			app := newProxyApp(srv.URL, "k")

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/", nil), -1)
			require.NoError(t, err)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, map[string]interface{}{"error": "Internal server error"}, decodeBody(t, resp))
		})
	}
}

func TestProxy_UnreachableBackendIsInternalError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	app := newProxyApp(url, "k")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"error": "Internal server error"}, decodeBody(t, resp))
}

func TestProxy_MethodNotAllowed(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{}`)
	app := newProxyApp(srv.URL, "k")

	resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/api/companies/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", decodeBody(t, resp)["error"])
}

func TestProxy_BodyForwarding(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		wantBody string
	}{
		{"json post", http.MethodPost, `{"name":"Acme"}`, `{"name":"Acme"}`},
		{"invalid json dropped", http.MethodPut, `name=Acme`, ``},
		{"delete body ignored", http.MethodDelete, `{"force":true}`, ``},
		{"patch", http.MethodPatch, `[1,2]`, `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newBackend(t, http.StatusOK, `{"ok":true}`)
			app := newProxyApp(srv.URL, "k")

			req := httptest.NewRequest(tt.method, "/api/companies/1", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.wantBody, got.body)
		})
	}
}

func TestProxy_TargetURL(t *testing.T) {
	h := NewProxyHandler("http://backend:8000/", "v1", "", "/api", nil)

	tests := []struct {
		path  string
		query string
		want  string
	}{
		{"/api/companies/", "", "http://backend:8000/v1/companies/"},
		{"/api/companies/42", "a=1&a=2", "http://backend:8000/v1/companies/42?a=1&a=2"},
		{"/api/companies/ticker/BRK%2FB", "", "http://backend:8000/v1/companies/ticker/BRK%2FB"},
		{"/api/../admin", "", "http://backend:8000/v1/%2E%2E/admin"},
		{"/api/%2e%2e/admin", "", "http://backend:8000/v1/%2E%2E/admin"},
		{"/api/companies//7", "", "http://backend:8000/v1/companies/7"},
		{"/api/companies/Procter & Gamble", "", "http://backend:8000/v1/companies/Procter%20&%20Gamble"},
		{"/API/companies", "", "http://backend:8000/v1/companies"},
		{"/Api/companies/7/", "", "http://backend:8000/v1/companies/7/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.targetURL(tt.path, tt.query), tt.path)
	}
}
