package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is built once at startup and handed to every constructor.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Listing   ListingConfig
	Search    SearchConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host           string `validate:"required"`
	Port           int    `validate:"min=1,max=65535"`
	ReadTimeout    int    `validate:"min=0"`
	WriteTimeout   int    `validate:"min=0"`
	BodyLimit      int    `validate:"min=0"`
	AllowedOrigins []string
	Development    bool
}

// BackendConfig describes the upstream REST API and how the gateway reaches it.
type BackendConfig struct {
	URL      string `validate:"required,url"`
	APIKey   string
	Version  string `validate:"required"`
	UseProxy bool
	// ProxyURL is where the typed client reaches the proxy route when UseProxy is set.
	// Empty means this gateway's own /api mount.
	ProxyURL string `validate:"omitempty,url"`
}

type ListingConfig struct {
	FetchAllPageSize  int    `validate:"min=1,max=100"`
	SessionTTLSeconds int    `validate:"min=1"`
	SessionStore      string `validate:"oneof=memory redis"`
	SessionCapacity   int    `validate:"min=1"`
}

type SearchConfig struct {
	DebounceMS        int `validate:"min=0"`
	PaletteDebounceMS int `validate:"min=0"`
	MaxQueryLength    int `validate:"min=1"`
	PaletteLimit      int `validate:"min=1"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerMinute int `validate:"min=0"`
}

type LoggingConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	Format     string `validate:"oneof=json console"`
	OutputPath string
}

// Load reads config.yaml (if present) and the environment. The public
// frontend variables keep their original names so existing .env files work.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dei-web")

	v.SetEnvPrefix("DEI_WEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Backend.URL = strings.TrimRight(config.Backend.URL, "/")

	return &config, nil
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"backend.url":      "NEXT_PUBLIC_API_URL",
		"backend.apiKey":   "API_KEY",
		"backend.useProxy": "NEXT_PUBLIC_USE_API_PROXY",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 4194304)
	v.SetDefault("server.allowedOrigins", []string{})
	v.SetDefault("server.development", false)

	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.apiKey", "")
	v.SetDefault("backend.version", "v1")
	v.SetDefault("backend.useProxy", true)
	v.SetDefault("backend.proxyURL", "")

	v.SetDefault("listing.fetchAllPageSize", 100)
	v.SetDefault("listing.sessionTTLSeconds", 600)
	v.SetDefault("listing.sessionStore", "memory")
	v.SetDefault("listing.sessionCapacity", 256)

	v.SetDefault("search.debounceMS", 300)
	v.SetDefault("search.paletteDebounceMS", 200)
	v.SetDefault("search.maxQueryLength", 200)
	v.SetDefault("search.paletteLimit", 8)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rateLimit.requestsPerMinute", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolvedProxyURL is the base URL the typed client uses in proxy mode.
func (c *Config) ResolvedProxyURL() string {
	if c.Backend.ProxyURL != "" {
		return strings.TrimRight(c.Backend.ProxyURL, "/")
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/api", host, c.Server.Port)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Listing.SessionTTLSeconds) * time.Second
}

func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

func (c *Config) PaletteDebounce() time.Duration {
	return time.Duration(c.Search.PaletteDebounceMS) * time.Millisecond
}
