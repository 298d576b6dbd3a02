// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/validation"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never deploy with it.
const DevJWTSecret = "debtbook-dev-secret-change-me"

// Config holds everything the server binary needs.
type Config struct {
	Addr         string              `json:"DEBTBOOK_ADDR" validate:"required"`
	DBDriver     string              `json:"DB_DRIVER" validate:"oneof=sqlite postgres"`
	DBPath       string              `json:"DB_PATH" validate:"required_if=DBDriver sqlite"`
	DatabaseURL  string              `json:"DATABASE_URL" validate:"required_if=DBDriver postgres"`
	JWTSecret    string              `json:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL     time.Duration       `json:"TOKEN_TTL" validate:"gt=0"`
	DeletePolicy ledger.DeletePolicy `json:"DELETE_ITEM_POLICY" validate:"-"`
	LogLevel     string              `json:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat    string              `json:"LOG_FORMAT" validate:"omitempty,oneof=text json"`
	StaticPath   string              `json:"STATIC_PATH"`

	// DevSecret is set when JWTSecret fell back to DevJWTSecret.
	DevSecret bool `json:"-"`
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Addr:        get("DEBTBOOK_ADDR", ":8080"),
		DBDriver:    strings.ToLower(get("DB_DRIVER", "sqlite")),
		DBPath:      get("DB_PATH", "./data/debtbook.db"),
		DatabaseURL: get("DATABASE_URL", ""),
		JWTSecret:   get("JWT_SECRET", ""),
		LogLevel:    strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(get("LOG_FORMAT", "text")),
		StaticPath:  get("STATIC_PATH", ""),
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DevJWTSecret
		cfg.DevSecret = true
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	policy, err := ledger.ParseDeletePolicy(get("DELETE_ITEM_POLICY", ""))
	if err != nil {
		return nil, fmt.Errorf("config: DELETE_ITEM_POLICY: %w", err)
	}
	cfg.DeletePolicy = policy

	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
