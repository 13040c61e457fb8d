package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for continuum-server.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"continuum-server"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8290"`
	MetricsPort     int           `env:"METRICS_PORT" envDefault:"9290"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	BasePath        string        `env:"BASE_PATH" envDefault:"/"`

	// Database
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"true"`

	// Auth
	AuthSecret string `env:"AUTH_SECRET,notEmpty"`

	// Outbound HTTP
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Job queue proxy
	QueueAPIURL string `env:"QUEUE_API_URL"`
	QueueAPIKey string `env:"QUEUE_API_KEY"`

	// Voice catalog (ElevenLabs)
	ElevenLabsAPIURL string `env:"ELEVENLABS_API_URL" envDefault:"https://api.elevenlabs.io"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	// Agent model catalog (OpenAI-compatible inference endpoint)
	ModelAPIURL string `env:"MODEL_API_URL" envDefault:"http://localhost:8001/v1"`
	ModelAPIKey string `env:"MODEL_API_KEY"`

	// Tool catalog
	ToolCatalogFile string `env:"TOOL_CATALOG_FILE" envDefault:"config/tools.yaml"`

	// Maintenance
	PulseRetentionDays      int  `env:"PULSE_RETENTION_DAYS" envDefault:"30"`
	SignupRequestMaxAgeDays int  `env:"SIGNUP_REQUEST_MAX_AGE_DAYS" envDefault:"90"`
	MaintenanceEnabled      bool `env:"MAINTENANCE_ENABLED" envDefault:"true"`

	// Defaults
	DefaultEntityName  string `env:"DEFAULT_ENTITY_NAME" envDefault:"Continuum"`
	DefaultEntityModel string `env:"DEFAULT_ENTITY_MODEL" envDefault:"gpt-4o-mini"`

	// Features
	EnableSwagger bool `env:"ENABLE_SWAGGER" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET must not be blank")
	}

	cfg.QueueAPIURL = strings.TrimSpace(cfg.QueueAPIURL)
	cfg.ElevenLabsAPIURL = strings.TrimSpace(cfg.ElevenLabsAPIURL)
	cfg.ModelAPIURL = strings.TrimSpace(cfg.ModelAPIURL)

	if cfg.PulseRetentionDays <= 0 {
		cfg.PulseRetentionDays = 30
	}
	if cfg.SignupRequestMaxAgeDays <= 0 {
		cfg.SignupRequestMaxAgeDays = 90
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// MetricsAddr returns the Prometheus scrape listen address.
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf(":%d", c.MetricsPort)
}

// Version is injected at build time via ldflags.
var Version = "dev"

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
