package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/platinummonkey/vortex-bridge/pkg/observability"
)

// DemoAPIKey is the placeholder used when VORTEX_API_KEY is unset.
// It is not a valid key, so signing fails until a real key is configured.
const DemoAPIKey = "demo-api-key"

// Session store types
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Session configuration
	Session SessionConfig

	// Directory configuration
	Directory DirectoryConfig

	// Vortex configuration
	Vortex VortexConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"BRIDGE_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"BRIDGE_PORT" envDefault:"5001"`
	ReadTimeout     time.Duration `env:"BRIDGE_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"BRIDGE_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"BRIDGE_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"BRIDGE_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `env:"BRIDGE_HEALTH_PORT" envDefault:"9090"`

	APIPrefix          string   `env:"BRIDGE_API_PREFIX" envDefault:"/api"`
	CORSOrigins        []string `env:"BRIDGE_CORS_ORIGINS" envSeparator:","`
	DevEndpoints       bool     `env:"BRIDGE_DEV_ENDPOINTS" envDefault:"true"`
	EnforceGroupAccess bool     `env:"BRIDGE_ENFORCE_GROUP_ACCESS" envDefault:"false"`

	// Login throttle per client address
	LoginRate  float64 `env:"BRIDGE_LOGIN_RATE" envDefault:"1"`
	LoginBurst int     `env:"BRIDGE_LOGIN_BURST" envDefault:"5"`
}

// Addr returns the API listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// HealthAddr returns the health server listen address
func (s ServerConfig) HealthAddr() string {
	return s.Host + ":" + s.HealthPort
}

// SessionConfig holds session store settings
type SessionConfig struct {
	TTL           time.Duration `env:"BRIDGE_SESSION_TTL" envDefault:"24h"`
	Store         string        `env:"BRIDGE_SESSION_STORE" envDefault:"memory"`
	CookieName    string        `env:"BRIDGE_SESSION_COOKIE" envDefault:"session"`
	CookieSecure  bool          `env:"BRIDGE_COOKIE_SECURE" envDefault:"false"`
	SweepSchedule string        `env:"BRIDGE_SESSION_SWEEP" envDefault:"@every 5m"`

	RedisURL      string `env:"BRIDGE_REDIS_URL"`
	RedisPassword string `env:"BRIDGE_REDIS_PASSWORD"`
	RedisDB       int    `env:"BRIDGE_REDIS_DB" envDefault:"0"`
}

// DirectoryConfig selects the user table
type DirectoryConfig struct {
	// File is a YAML user table; the built-in demo table is used when empty
	File                 string `env:"BRIDGE_DIRECTORY_FILE"`
	CaseInsensitiveEmail bool   `env:"BRIDGE_EMAIL_CASE_INSENSITIVE" envDefault:"false"`
}

// VortexConfig holds the external service settings
type VortexConfig struct {
	APIKey            string        `env:"VORTEX_API_KEY"`
	BaseURL           string        `env:"VORTEX_BASE_URL" envDefault:"https://api.vortexsoftware.com/api/v1"`
	Timeout           time.Duration `env:"VORTEX_TIMEOUT" envDefault:"10s"`
	AssertionTTL      time.Duration `env:"BRIDGE_ASSERTION_TTL" envDefault:"1h"`
	AcceptConcurrency int           `env:"BRIDGE_ACCEPT_CONCURRENCY" envDefault:"4"`
	AcceptMaxIDs      int           `env:"BRIDGE_ACCEPT_MAX_IDS" envDefault:"100"`
}

// UsingDemoKey reports whether the placeholder key is in use
func (v VortexConfig) UsingDemoKey() bool {
	return v.APIKey == DemoAPIKey
}

// KeyPreview returns at most the first 10 characters of the API key, safe to log
func (v VortexConfig) KeyPreview() string {
	if len(v.APIKey) <= 10 {
		return v.APIKey
	}
	return v.APIKey[:10] + "..."
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string `env:"BRIDGE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"BRIDGE_LOG_FORMAT" envDefault:"json"`

	// Metrics
	MetricsEnabled bool `env:"BRIDGE_METRICS_ENABLED" envDefault:"true"`

	// OpenTelemetry
	OTelEnabled        bool   `env:"BRIDGE_OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint       string `env:"BRIDGE_OTEL_ENDPOINT" envDefault:"localhost:4317"`
	OTelServiceName    string `env:"BRIDGE_OTEL_SERVICE_NAME" envDefault:"vortex-bridge"`
	OTelServiceVersion string `env:"BRIDGE_OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	OTelInsecure       bool   `env:"BRIDGE_OTEL_INSECURE" envDefault:"true"` // Use insecure gRPC connection
}

// Level returns the parsed log level
func (o ObservabilityConfig) Level() observability.LogLevel {
	level, _ := observability.ParseLogLevel(o.LogLevel)
	return level
}

// Format returns the parsed log format
func (o ObservabilityConfig) Format() observability.LogFormat {
	return observability.LogFormat(strings.ToLower(o.LogFormat))
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	return load(env.Options{})
}

// LoadConfigFrom loads configuration from the given variables instead of the process environment
func LoadConfigFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Vortex.APIKey == "" {
		cfg.Vortex.APIKey = DemoAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("API prefix must start with /: %q", c.Server.APIPrefix)
	}
	if c.Server.LoginRate <= 0 || c.Server.LoginBurst <= 0 {
		return fmt.Errorf("login rate and burst must be positive")
	}

	// Validate session config
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis session store")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory or redis)", c.Session.Store)
	}

	// Validate vortex config
	if c.Vortex.AssertionTTL <= 0 {
		return fmt.Errorf("assertion TTL must be positive")
	}
	if c.Vortex.AcceptConcurrency <= 0 {
		return fmt.Errorf("accept concurrency must be positive")
	}
	if c.Vortex.AcceptMaxIDs <= 0 {
		return fmt.Errorf("accept max ids must be positive")
	}
	if c.Vortex.BaseURL == "" {
		return fmt.Errorf("vortex base URL is required")
	}

	// Validate observability config
	if _, err := observability.ParseLogLevel(c.Observability.LogLevel); err != nil {
		return err
	}
	switch c.Observability.Format() {
	case observability.FormatJSON, observability.FormatText:
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}
