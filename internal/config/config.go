//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-salesdw.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for pgedge-salesdw.
type Config struct {
	// Source is the connection string of the operational (OLTP) database.
	Source string `mapstructure:"source"`

	// Warehouse is the connection string of the dimensional (OLAP) database.
	Warehouse string `mapstructure:"warehouse"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops both schemas before creating them.
	DropExisting bool `mapstructure:"drop_existing"`
}

// SeedConfig holds configuration for populating the source database.
type SeedConfig struct {
	// Sales is the number of sale headers to generate.
	Sales int `mapstructure:"sales"`

	// Seed makes generation reproducible; 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// DirtyRatio is the probability (0-1) that a generated value is
	// deliberately malformed: blank names, unknown dates, negative quantities.
	DirtyRatio float64 `mapstructure:"dirty_ratio"`

	// Fixture is a YAML file loaded instead of generated data.
	Fixture string `mapstructure:"fixture"`
}

// LoadConfig holds configuration for the ETL run.
type LoadConfig struct {
	// ProgressInterval is how often (in rows) the fact stage logs progress.
	ProgressInterval int `mapstructure:"progress_interval"`

	// RecordRun persists per-stage statistics in the warehouse.
	RecordRun bool `mapstructure:"record_run"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Init: InitConfig{
			DropExisting: false,
		},
		Seed: SeedConfig{
			Sales:      1000,
			DirtyRatio: 0.05,
		},
		Load: LoadConfig{
			ProgressInterval: 10000,
			RecordRun:        true,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-salesdw.yaml
// 3. ~/.config/pgedge-salesdw/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-salesdw")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-salesdw"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that both connection strings are present.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source connection string is required")
	}
	if c.Warehouse == "" {
		return fmt.Errorf("warehouse connection string is required")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command, which
// only touches the source database.
func (c *Config) ValidateSeed() error {
	if c.Source == "" {
		return fmt.Errorf("source connection string is required")
	}
	if c.Seed.Fixture != "" {
		return nil
	}
	if c.Seed.Sales < 1 {
		return fmt.Errorf("seed sales must be at least 1")
	}
	if c.Seed.DirtyRatio < 0 || c.Seed.DirtyRatio > 1 {
		return fmt.Errorf("seed dirty_ratio must be between 0 and 1")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval must be non-negative")
	}
	return nil
}

// ValidateStatus checks configuration required for the status command,
// which only reads the warehouse.
func (c *Config) ValidateStatus() error {
	if c.Warehouse == "" {
		return fmt.Errorf("warehouse connection string is required")
	}
	return nil
}
