package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/dei-tracker/web/pkg/logger"
)

var (
	ErrUnauthorized = errors.New("Unauthorized: Invalid or missing API key")
	ErrForbidden    = errors.New("Forbidden: Insufficient permissions")
)

// HTTPError is returned for non-2xx responses other than 401 and 403.
type HTTPError struct {
	StatusCode int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API Error: %s", e.StatusText)
}

// StatusOf maps a client error to the HTTP status a page endpoint should answer with.
func StatusOf(err error) int {
	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// Config is built once from the process configuration and handed to New.
type Config struct {
	BackendURL string
	Version    string
	UseProxy   bool
	// ProxyURL is the proxy route's base, e.g. http://127.0.0.1:3000/api.
	ProxyURL   string
	APIKey     string
	HTTPClient *http.Client
}

// Client issues single-attempt requests to the backend, either directly or
// through the proxy route. It never retries and never caches.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{httpClient: httpClient}
	if cfg.UseProxy {
		c.baseURL = strings.TrimRight(cfg.ProxyURL, "/")
	} else {
		c.baseURL = strings.TrimRight(cfg.BackendURL, "/")
		if cfg.Version != "" {
			c.baseURL += "/" + strings.Trim(cfg.Version, "/")
		}
		// The proxy injects the key itself; only direct calls carry it.
		c.apiKey = cfg.APIKey
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// fetch performs one request and returns the unwrapped JSON body.
func (c *Client) fetch(ctx context.Context, method, path string, params url.Values, body interface{}) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &HTTPError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON from %s", path)
	}

	logger.Debug("Backend call completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return Unwrap(data)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.fetch(ctx, http.MethodGet, path, params, nil)
}

func statusText(resp *http.Response) string {
	// resp.Status is "404 Not Found"; keep only the reason phrase.
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func segment(id string) string {
	return url.PathEscape(id)
}
