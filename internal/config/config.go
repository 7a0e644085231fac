// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Storage drivers accepted by DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const minSecretLength = 32

// Config holds everything main needs to assemble the server.
type Config struct {
	Port           string        `env:"PORT"                 envDefault:"8080"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	JWTExpire      time.Duration `env:"JWT_EXPIRE,required"`
	BcryptCost     int           `env:"BCRYPT_COST"          envDefault:"10"`
	DatabaseDriver string        `env:"DATABASE_DRIVER"      envDefault:"sqlite"`
	DatabasePath   string        `env:"DATABASE_PATH"        envDefault:"blog.db"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisTTL       time.Duration `env:"REDIS_TTL"            envDefault:"5m"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES"     envDefault:"10485760"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.JWTExpire <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and 14, got %d", bcrypt.MinCost, c.BcryptCost))
	}
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver))
	}
	if c.RedisAddr != "" && c.RedisTTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")

	return errors.Join(errs...)
}
