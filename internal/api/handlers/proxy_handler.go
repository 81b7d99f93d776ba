package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/pkg/logger"
)

// ProxyHandler relays browser calls to the backend with the server-side API
// key attached. It makes one attempt per request and relays the backend
// status code unchanged.
type ProxyHandler struct {
	targetBase string
	prefix     string
	apiKey     string
	httpClient *http.Client
}

// NewProxyHandler relays requests under prefix (e.g. "/api") to
// backendURL/version.
func NewProxyHandler(backendURL, version, apiKey, prefix string, httpClient *http.Client) *ProxyHandler {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	base := strings.TrimRight(backendURL, "/")
	if version = strings.Trim(version, "/"); version != "" {
		base += "/" + version
	}
	return &ProxyHandler{
		targetBase: base,
		prefix:     strings.TrimRight(prefix, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (h *ProxyHandler) Handle(c *fiber.Ctx) error {
	method := c.Method()
	switch method {
	case fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	}

	start := time.Now()
	requestID := uuid.New().String()

	status, body, err := h.relay(c, method, requestID)
	metrics.ProxyDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error("Proxy request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		metrics.ProxyFailures.Inc()
		metrics.ProxyTotal.WithLabelValues(method, strconv.Itoa(fiber.StatusInternalServerError)).Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	metrics.ProxyTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set("X-Request-ID", requestID)
	return c.Status(status).Send(body)
}

func (h *ProxyHandler) relay(c *fiber.Ctx, method, requestID string) (int, []byte, error) {
	target := h.targetURL(string(c.Request().URI().PathOriginal()), string(c.Request().URI().QueryString()))

	var reader io.Reader
	if method != fiber.MethodGet && method != fiber.MethodDelete {
		if payload := c.Body(); len(payload) > 0 && json.Valid(payload) {
			reader = bytes.NewReader(append([]byte(nil), payload...))
		}
	}

	req, err := http.NewRequestWithContext(c.UserContext(), method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if h.apiKey != "" {
		req.Header.Set("X-API-Key", h.apiKey)
	} else {
		logger.Warn("API key not configured; forwarding without X-API-Key", zap.String("request_id", requestID))
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	if !json.Valid(data) {
		return 0, nil, fmt.Errorf("backend returned invalid JSON with status %d", resp.StatusCode)
	}

	logger.Debug("Proxied request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("target", target),
		zap.Int("status", resp.StatusCode),
	)

	return resp.StatusCode, data, nil
}

// targetURL maps an inbound path under the prefix onto the backend. Every
// segment is re-escaped so it cannot climb out of the versioned base, and
// the raw query is appended once as received.
func (h *ProxyHandler) targetURL(rawPath, rawQuery string) string {
	rest := rawPath
	if len(rest) >= len(h.prefix) && strings.EqualFold(rest[:len(h.prefix)], h.prefix) {
		rest = rest[len(h.prefix):]
	}
	trailing := strings.HasSuffix(rest, "/")

	segments := make([]string, 0, strings.Count(rest, "/")+1)
	for _, seg := range strings.Split(rest, "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, escapeSegment(seg))
	}

	target := h.targetBase + "/" + strings.Join(segments, "/")
	if trailing && len(segments) > 0 {
		target += "/"
	}
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

func escapeSegment(seg string) string {
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	if seg == "." || seg == ".." {
		return strings.ReplaceAll(seg, ".", "%2E")
	}
	return url.PathEscape(seg)
}
