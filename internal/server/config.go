// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the room chat service.
package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
// Values are read from the environment; unset or non-positive values fall back
// to the defaults in defaultConfig.
type Config struct {
	Port            string        `env:"SERVER_PORT,default=:8080" validate:"required"`
	Origins         string        `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	MaxMessageSize  int           `env:"MAX_MESSAGE_SIZE,default=4096" validate:"gt=0"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=5" validate:"gt=0"`
	RateLimitRefill time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s" validate:"gt=0"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=256" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	PongTimeout     time.Duration `env:"PONG_TIMEOUT,default=60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
	LogLevel        string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`

	KlipyAPIKey     string `env:"KLIPY_API_KEY"`
	KlipyCustomerID string `env:"KLIPY_CUSTOMER_ID"`
	KlipyBaseURL    string `env:"KLIPY_BASE_URL,default=https://api.klipy.com" validate:"omitempty,url"`
	ChainRPCURL     string `env:"CHAIN_RPC_URL,default=https://arb1.arbitrum.io/rpc" validate:"omitempty,url"`
}

func defaultConfig() Config {
	return Config{
		Port:            ":8080",
		Origins:         "http://localhost:8080",
		MaxMessageSize:  4096,
		RateLimitBurst:  5,
		RateLimitRefill: time.Second,
		SendBufferSize:  256,
		WriteTimeout:    10 * time.Second,
		PongTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		KlipyBaseURL:    "https://api.klipy.com",
		ChainRPCURL:     "https://arb1.arbitrum.io/rpc",
	}
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() Config {
	return defaultConfig()
}

// LoadConfig reads the configuration from the process environment, replaces
// unusable values with defaults and validates the result. Callers that want
// .env support load it with godotenv first.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	cfg = sanitizeConfig(cfg)
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func sanitizeConfig(cfg Config) Config {
	defaults := defaultConfig()

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = defaults.Port
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaults.RateLimitBurst
	}
	if cfg.RateLimitRefill <= 0 {
		cfg.RateLimitRefill = defaults.RateLimitRefill
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaults.SendBufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaults.PongTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	return cfg
}

// RateLimit groups the rate limiting settings.
func (c Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{Burst: c.RateLimitBurst, RefillInterval: c.RateLimitRefill}
}

// AllowedOrigins splits the comma separated origin list.
func (c Config) AllowedOrigins() []string {
	parts := strings.Split(c.Origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// PingInterval is how often keepalive pings are written. It stays below the
// pong timeout so a healthy peer always answers in time.
func (c Config) PingInterval() time.Duration {
	return c.PongTimeout * 9 / 10
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
