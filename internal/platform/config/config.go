// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps environment variables onto strongly-typed settings using
'caarlos0/env'.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The API server loads the full [Config]. Operator commands that only talk to
PostgreSQL call [LoadDatabase] so they do not require Redis or JWT keys.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL,required,notEmpty"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"5"`
}

// LendingConfig holds the circulation policy.
type LendingConfig struct {
	// LoanPeriod is the time between borrowing and the due date.
	LoanPeriod time.Duration `env:"LOAN_PERIOD" envDefault:"336h"`
}

// Config holds all runtime configuration for the Libris API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	Database DatabaseConfig

	// Key-Value store for refresh sessions (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// RS256 key pair for access tokens
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required,notEmpty"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	Lending LendingConfig

	// Comma-separated list of allowed CORS origins in production.
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.Lending.LoanPeriod <= 0 {
		return nil, fmt.Errorf("config: LOAN_PERIOD must be positive, got %s", cfg.Lending.LoanPeriod)
	}

	return cfg, nil
}

// LoadDatabase parses only the database settings.
func LoadDatabase() (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse database environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Origins returns the trimmed, non-empty entries of AllowedOrigins.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
