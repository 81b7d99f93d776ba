package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, cfg HeadersConfig) *http.Response {
	t.Helper()
	app := fiber.New()
	app.Use(HeadersMiddleware(cfg))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return resp
}

func TestHeaders_Production(t *testing.T) {
	resp := serve(t, HeadersConfig{
		AllowedOrigins: []string{"https://dei.example.com"},
		BackendURL:     "https://api.example.com",
	})

	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Strict-Transport-Security"))

	csp := resp.Header.Get("Content-Security-Policy")
	assert.Contains(t, csp, "connect-src 'self' https://dei.example.com https://api.example.com;")
	assert.Contains(t, csp, "frame-ancestors 'none'")
}

func TestHeaders_DevelopmentSkipsHSTS(t *testing.T) {
	resp := serve(t, HeadersConfig{IsDevelopment: true})

	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "connect-src 'self';")
}
