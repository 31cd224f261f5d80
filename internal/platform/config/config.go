// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, token codec, hasher) via constructors.
  - Secrets: Signing keys are [secret.Secret] values and never render in logs.
*/
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/yomira-auth/internal/platform/secret"
)

// MinSecretLength is the minimum byte length accepted for an HMAC signing key.
const MinSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the yomira-auth API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// ClientURL is the single browser origin allowed to send credentialed requests.
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	// Relational Database (PostgreSQL)
	DatabaseURL secret.Secret `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Token signing
	JWT JWTConfig `envPrefix:"JWT_"`

	// Password hashing worker pool
	Hasher HasherConfig `envPrefix:"HASHER_"`

	// LoginTimingEqualization verifies unknown usernames against a dummy hash
	// so that response time does not reveal whether an account exists.
	LoginTimingEqualization bool `env:"LOGIN_TIMING_EQUALIZATION" envDefault:"true"`
}

// JWTConfig carries the claims and key material for access and refresh tokens.
type JWTConfig struct {
	Issuer        string        `env:"ISSUER,required,notEmpty"`
	Audience      string        `env:"AUDIENCE,required,notEmpty"`
	AccessSecret  secret.Secret `env:"ACCESS_SECRET,required,notEmpty"`
	RefreshSecret secret.Secret `env:"REFRESH_SECRET,required,notEmpty"`
}

// HasherConfig sizes the password hashing worker pool.
type HasherConfig struct {
	// Workers is the number of goroutines computing hashes. Zero means NumCPU.
	Workers int `env:"WORKERS" envDefault:"0"`
	// Queue is the number of jobs allowed to wait for a free worker.
	Queue int `env:"QUEUE" envDefault:"64"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.AccessSecret.Len() < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_SECRET must be at least %d bytes", MinSecretLength))
	}
	if c.JWT.RefreshSecret.Len() < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_SECRET must be at least %d bytes", MinSecretLength))
	}
	if c.JWT.AccessSecret.Equal(c.JWT.RefreshSecret) {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Hasher.Workers < 0 {
		errs = append(errs, errors.New("HASHER_WORKERS must not be negative"))
	}
	if c.Hasher.Queue < 0 {
		errs = append(errs, errors.New("HASHER_QUEUE must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// HasherWorkers returns the effective worker count.
func (c *Config) HasherWorkers() int {
	if c.Hasher.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Hasher.Workers
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
