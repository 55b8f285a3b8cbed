package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Backend settings
	Backend struct {
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		Jurisdiction string `yaml:"jurisdiction"`
		Domain       string `yaml:"domain"`
	} `yaml:"backend"`

	// Model settings
	Model struct {
		Default string `yaml:"default"`
	} `yaml:"model"`

	// Recognition settings
	Recognition struct {
		AutoListen   bool    `yaml:"auto_listen"`
		MaxRetries   int     `yaml:"max_retries"`
		VADEnabled   bool    `yaml:"vad_enabled"`
		VADThreshold float64 `yaml:"vad_threshold"`
	} `yaml:"recognition"`

	// Voice settings
	Voice struct {
		Name   string  `yaml:"name"`
		Rate   float32 `yaml:"rate"`
		Pitch  float32 `yaml:"pitch"`
		Volume float32 `yaml:"volume"`
	} `yaml:"voice"`

	// Audio settings
	Audio struct {
		Device string `yaml:"device"`
	} `yaml:"audio"`

	// Gateway settings
	Gateway struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	} `yaml:"gateway"`

	// Server settings
	Server struct {
		Mode      string `yaml:"mode"`
		Port      int    `yaml:"port"`
		Host      string `yaml:"host"`
		EnableTLS bool   `yaml:"enable_tls"`
		CertFile  string `yaml:"cert_file"`
		KeyFile   string `yaml:"key_file"`
	} `yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Backend defaults
	cfg.Backend.BaseURL = "http://localhost:3000"
	cfg.Backend.Jurisdiction = "US"
	cfg.Backend.Domain = "general"

	// Model defaults
	cfg.Model.Default = ""

	// Recognition defaults
	cfg.Recognition.AutoListen = true
	cfg.Recognition.MaxRetries = 5
	cfg.Recognition.VADEnabled = true
	cfg.Recognition.VADThreshold = 0.01

	// Voice defaults
	cfg.Voice.Rate = 1.0
	cfg.Voice.Pitch = 1.0
	cfg.Voice.Volume = 0.8

	// Audio defaults
	cfg.Audio.Device = ""

	// Gateway defaults
	cfg.Gateway.Host = "localhost"
	cfg.Gateway.Port = 8090

	// Server defaults
	cfg.Server.Mode = "cli"
	cfg.Server.Port = 8080
	cfg.Server.Host = "localhost"
	cfg.Server.EnableTLS = false

	return cfg
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.lexvoicerc > /etc/lexvoice/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	// If explicit path is provided, use it
	if explicitPath != "" {
		return Load(explicitPath)
	}

	// Try user config (~/.lexvoicerc)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".lexvoicerc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	// Try system config (/etc/lexvoice/config.yaml)
	systemConfigPath := "/etc/lexvoice/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
