package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	// BackendURL is added to connect-src when browsers call the backend
	// directly instead of through the proxy route.
	BackendURL    string
	IsDevelopment bool
}

func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"font-src 'self' data:; " +
		"connect-src " + buildConnectSrc(cfg) + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Set("Content-Security-Policy", csp)

		return c.Next()
	}
}

func buildConnectSrc(cfg HeadersConfig) string {
	sources := []string{"'self'"}
	sources = append(sources, cfg.AllowedOrigins...)
	if cfg.BackendURL != "" {
		sources = append(sources, cfg.BackendURL)
	}
	return strings.Join(sources, " ")
}
