package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/api/handlers"
	"github.com/dei-tracker/web/internal/cache/redis"
	"github.com/dei-tracker/web/internal/companies"
	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/internal/middleware/ratelimit"
	"github.com/dei-tracker/web/internal/middleware/security"
	"github.com/dei-tracker/web/internal/middleware/validation"
	"github.com/dei-tracker/web/pkg/config"
	"github.com/dei-tracker/web/pkg/logger"
	"github.com/dei-tracker/web/pkg/retry"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web gateway",
	Long:  `Start the HTTP server that exposes the /api proxy, the /data page endpoints and the /ws live listing.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Starting DEI tracker web gateway",
		zap.String("backend", cfg.Backend.URL),
		zap.Bool("use_proxy", cfg.Backend.UseProxy),
	)
	if cfg.Backend.APIKey == "" {
		logger.Warn("API_KEY is not set; backend requests will be unauthenticated")
	}

	metrics.Init()

	store, closeStore, err := newSessionStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	app, cleanup := newApp(cfg, store)
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", addr))

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Shutdown did not complete", zap.Error(err))
	}
	logger.Info("Server stopped")
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSessionStore picks where fetch-all row sets are kept between requests.
func newSessionStore(ctx context.Context, cfg *config.Config) (companies.SessionStore, func(), error) {
	if cfg.Listing.SessionStore != "redis" {
		return companies.NewMemoryStore(cfg.Listing.SessionCapacity), func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, retry.DefaultConfig("redis"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Using redis listing sessions", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))

	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.New(api.Config{
		BackendURL: cfg.Backend.URL,
		Version:    cfg.Backend.Version,
		UseProxy:   cfg.Backend.UseProxy,
		ProxyURL:   cfg.ResolvedProxyURL(),
		APIKey:     cfg.Backend.APIKey,
	})
}

// newApp wires the routes. The returned cleanup stops background work owned
// by the middleware.
func newApp(cfg *config.Config, store companies.SessionStore) (*fiber.App, func()) {
	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		CaseSensitive:         true,
	})

	allowOrigins := "*"
	if len(cfg.Server.AllowedOrigins) > 0 {
		allowOrigins = strings.Join(cfg.Server.AllowedOrigins, ",")
	}

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	connectBackend := ""
	if !cfg.Backend.UseProxy {
		connectBackend = cfg.Backend.URL
	}
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		BackendURL:     connectBackend,
		IsDevelopment:  cfg.Server.Development,
	}))

	client := newClient(cfg)
	service := companies.NewService(client, store, cfg.Listing.FetchAllPageSize, cfg.SessionTTL())

	proxyHandler := handlers.NewProxyHandler(cfg.Backend.URL, cfg.Backend.Version, cfg.Backend.APIKey, "/api", &http.Client{})
	companiesHandler := handlers.NewCompaniesHandler(client, service, cfg.Search.PaletteLimit, cfg.Search.MaxQueryLength)
	analyticsHandler := handlers.NewAnalyticsHandler(client)
	wsHandler := handlers.NewWebSocketHandler(client, client, handlers.WebSocketConfig{
		FetchAllPageSize: cfg.Listing.FetchAllPageSize,
		SearchDebounce:   cfg.SearchDebounce(),
		PaletteDebounce:  cfg.PaletteDebounce(),
		PaletteLimit:     cfg.Search.PaletteLimit,
		MaxQueryLength:   cfg.Search.MaxQueryLength,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Logger:               logger.GetLogger(),
	})

	app.All("/api/*", proxyHandler.Handle)

	data := app.Group("/data", limiter.Middleware(), validation.Middleware(validation.Config{
		MaxQueryLength: cfg.Search.MaxQueryLength,
		Logger:         logger.GetLogger(),
	}))
	data.Get("/companies", companiesHandler.List)
	data.Get("/companies/filters", companiesHandler.FilterOptions)
	data.Get("/companies/:id", companiesHandler.Detail)
	data.Get("/search", companiesHandler.Search)
	data.Get("/overview", analyticsHandler.Overview)
	data.Get("/industries", analyticsHandler.Industries)
	data.Get("/rankings", analyticsHandler.Rankings)

	app.Use("/ws", limiter.Middleware(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/companies", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "healthy",
			"time":          time.Now().Unix(),
			"session_store": store.Name(),
		})
	})

	return app, limiter.Stop
}
