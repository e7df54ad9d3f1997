package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Auction   AuctionConfig   `yaml:"auction"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AuctionConfig holds the settings for one auction session.
type AuctionConfig struct {
	ID           string        `yaml:"id"`
	BaseURL      string        `yaml:"base_url"`
	PageSize     int           `yaml:"page_size"`
	SyncInterval time.Duration `yaml:"sync_interval"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// ServerConfig holds HTTP server settings for the health/status endpoints.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Insecure       bool   `yaml:"insecure"`
}

// Load reads a YAML configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{
		Auction: AuctionConfig{
			PageSize:     10,
			SyncInterval: 30 * time.Second,
			FetchTimeout: 20 * time.Second,
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "kiosk",
			ServiceVersion: "0.1.0",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.Auction.ID == "" {
		return fmt.Errorf("auction id must be set")
	}
	if c.Auction.BaseURL == "" {
		return fmt.Errorf("auction base_url must be set")
	}
	if c.Auction.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.Auction.PageSize)
	}
	if c.Auction.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive, got %s", c.Auction.SyncInterval)
	}
	return nil
}
