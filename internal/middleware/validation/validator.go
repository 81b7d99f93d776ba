package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/metrics"
)

var xssPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

// Config bounds the free-text parameters of the page-data routes. Company
// names routinely contain words like "Select" or "Union", so only markup is
// rejected, never SQL-looking text.
type Config struct {
	MaxQueryLength      int
	AllowedContentTypes []string
	// SearchParams are the query-string keys checked for length and markup.
	SearchParams []string
	Logger       *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 200
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if len(cfg.SearchParams) == 0 {
		cfg.SearchParams = []string{"search", "q"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
			contentType := c.Get(fiber.HeaderContentType)
			if contentType != "" && !allowedContentType(contentType, cfg.AllowedContentTypes) {
				metrics.RequestsRejected.WithLabelValues("content_type").Inc()
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		for _, key := range cfg.SearchParams {
			value := c.Query(key)
			if value == "" {
				continue
			}

			if len(value) > cfg.MaxQueryLength {
				metrics.RequestsRejected.WithLabelValues("length").Inc()
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Query exceeds maximum length",
				})
			}

			if containsXSS(value) {
				cfg.Logger.Warn("Potential XSS attempt",
					zap.String("ip", c.IP()),
					zap.String("param", key),
					zap.String("value", value),
				)
				metrics.RequestsRejected.WithLabelValues("markup").Inc()
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid query content",
				})
			}
		}

		return c.Next()
	}
}

func allowedContentType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func containsXSS(input string) bool {
	return xssPattern.MatchString(input)
}

// Sanitize trims whitespace and strips NUL bytes from free text.
func Sanitize(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}
