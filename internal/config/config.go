package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ServiceName labels logs, metrics and traces emitted by the server.
const ServiceName = "parks-catalog"

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Port               string `env:"PORT" envDefault:"3000"`
	ReadTimeoutSecs    int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`
	WriteTimeoutSecs   int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"`
	IdleTimeoutSecs    int    `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`
	RequestTimeoutSecs int    `env:"REQUEST_TIMEOUT_SECS" envDefault:"10"`

	DBURL             string `env:"DB_URL,notEmpty"`
	DBMaxConns        int    `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns        int    `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxIdleSecs     int    `env:"DB_MAX_CONN_IDLE_SECS" envDefault:"300"`
	DBMaxLifeSecs     int    `env:"DB_MAX_CONN_LIFETIME_SECS" envDefault:"3600"`
	DBConnTimeoutSecs int    `env:"DB_CONN_TIMEOUT_SECS" envDefault:"10"`
	DBStatementCache  int    `env:"DB_STATEMENT_CACHE_CAPACITY" envDefault:"256"`
	DBAutoMigrate     bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	DBSlowQueryMillis int    `env:"DB_SLOW_QUERY_MS" envDefault:"0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPS       int      `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"20"`

	TracingEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables, applying defaults and validation.
// Outside production a .env file in the working directory is loaded first; variables
// already present in the environment win.
func Load() (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECS must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if c.DBSlowQueryMillis < 0 {
		return fmt.Errorf("DB_SLOW_QUERY_MS must be non-negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1]")
	}
	return nil
}
