package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines chargebook service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CHARGEBOOK_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"CHARGEBOOK_POSTGRES_DSN" validate:"required"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"CHARGEBOOK_REDIS_ADDR"`
		Password string `yaml:"password" env:"CHARGEBOOK_REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"CHARGEBOOK_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret     string  `yaml:"jwtSecret" env:"CHARGEBOOK_JWT_SECRET" validate:"required"`
		TokenTTLMin   int     `yaml:"tokenTTLMinutes" env:"CHARGEBOOK_TOKEN_TTL_MINUTES"`
		SignupBalance float64 `yaml:"signupBalance" env:"CHARGEBOOK_SIGNUP_BALANCE" validate:"gte=0"`
	} `yaml:"auth"`
	Availability struct {
		Policy       string `yaml:"policy" env:"CHARGEBOOK_AVAILABILITY_POLICY" validate:"oneof=recompute counter"`
		PollInterval int    `yaml:"pollIntervalSeconds" env:"CHARGEBOOK_POLL_INTERVAL"`
	} `yaml:"availability"`
}

// Load reads configuration from YAML file plus env overrides and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.TTL = 15
	cfg.Auth.TokenTTLMin = 60
	cfg.Auth.SignupBalance = 0
	cfg.Availability.Policy = "recompute"
	cfg.Availability.PollInterval = 5

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheTTL returns the availability cache TTL as duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// TokenTTL returns the JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMin <= 0 {
		return time.Hour
	}
	return time.Duration(c.Auth.TokenTTLMin) * time.Minute
}

// WatchInterval returns the live snapshot polling interval.
func (c *Config) WatchInterval() time.Duration {
	if c.Availability.PollInterval <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Availability.PollInterval) * time.Second
}
