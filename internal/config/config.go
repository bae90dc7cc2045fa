// Package config loads the storefront configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/text/currency"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Currency every cart is priced in
	Currency string `env:"CURRENCY" envDefault:"USD"`

	// Product catalog
	CatalogURL          string        `env:"CATALOG_URL" envDefault:"https://estorebackend-production.up.railway.app"`
	CatalogTimeout      time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	BreakerMinRequests  uint32        `env:"CATALOG_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerFailureRatio float64       `env:"CATALOG_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerOpenTimeout  time.Duration `env:"CATALOG_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// Cart storage
	CartBackend        string        `env:"CART_BACKEND" envDefault:"memory"`
	PostgresDSN        string        `env:"POSTGRES_DSN"`
	RedisAddr          string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	CartTTL            time.Duration `env:"CART_TTL" envDefault:"168h"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	unit currency.Unit
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env.Parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CurrencyUnit is the parsed Currency.
func (c *Config) CurrencyUnit() currency.Unit {
	return c.unit
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}
	c.unit = unit

	if u, err := url.Parse(c.CatalogURL); err != nil || u.Host == "" {
		return fmt.Errorf("invalid catalog url: %q", c.CatalogURL)
	}

	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("catalog breaker failure ratio must be in (0, 1]: %v", c.BreakerFailureRatio)
	}

	switch c.CartBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for cart backend %q", c.CartBackend)
		}
	default:
		return fmt.Errorf("unknown cart backend: %q", c.CartBackend)
	}

	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive: %s", c.SessionIdleTimeout)
	}

	return nil
}
