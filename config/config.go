// Package config loads server configuration from a YAML file with optional
// environment overrides. A .env file in the working directory is loaded
// first so local development can override without editing the config file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Contracts  ContractConfig   `yaml:"contracts"`
	Margin     MarginConfig     `yaml:"margin"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" for an in-memory database.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type ComplianceConfig struct {
	// LookaheadDays is the expiry window within which compliance items show
	// as expiring.
	LookaheadDays int `yaml:"lookahead_days"`
}

type ContractConfig struct {
	// RenewalNoticeDays is the default expiring-soon window for contracts
	// that do not set their own.
	RenewalNoticeDays int `yaml:"renewal_notice_days"`
}

type MarginConfig struct {
	// MinimumPct is the organization-wide minimum margin percentage below
	// which quotes are flagged.
	MinimumPct float64 `yaml:"minimum_pct"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Port: 8080},
		Database:   DatabaseConfig{Path: "staffing.db"},
		Log:        LogConfig{Level: "info", Format: "text"},
		Compliance: ComplianceConfig{LookaheadDays: 30},
		Contracts:  ContractConfig{RenewalNoticeDays: 30},
		Margin:     MarginConfig{MinimumPct: 5},
	}
}

// Load reads the YAML file at path and applies environment overrides.
// An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "staffing.db"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
