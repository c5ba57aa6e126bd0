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
  - DI-Friendly: Passed to core components (DB, Redis, Vault) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the demo host binary.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL) backing the user directory.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis) backing the session store.
	RedisURL string `env:"REDIS_URL,required"`

	// KeyMaterialDir is the directory holding the vault's auth/refresh key
	// pairs and password secret (see vault.NewPEMKeyLoader).
	KeyMaterialDir string `env:"KEY_MATERIAL_DIR,required"`

	// AuthTokenTTL and RefreshTokenTTL bound the vault's credential
	// lifetimes.
	AuthTokenTTL    time.Duration `env:"AUTH_TOKEN_TTL"    envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`

	// TrustTokenBearer enables the vault's TrustToken hazard (see
	// vault.TrustTokenPolicy); it must stay false unless the deployment
	// additionally binds credentials to a mutually authenticated transport.
	TrustTokenBearer bool `env:"TRUST_TOKEN_BEARER" envDefault:"false"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsAllowedOrigin reports whether origin appears in the comma-separated
// ExtraOrigins allowlist.
func (c *Config) IsAllowedOrigin(origin string) bool {
	for _, allowed := range strings.Split(c.ExtraOrigins, ",") {
		if allowed := strings.TrimSpace(allowed); allowed != "" && allowed == origin {
			return true
		}
	}
	return false
}
