package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Pipeline.SessionTTL == 0 {
		cfg.Pipeline.SessionTTL = 24 * time.Hour
	}
	if cfg.Pipeline.CheckpointTTL == 0 {
		cfg.Pipeline.CheckpointTTL = 7 * 24 * time.Hour
	}
	if cfg.Pipeline.RestoreWindow == 0 {
		cfg.Pipeline.RestoreWindow = 24 * time.Hour
	}
	if cfg.Pipeline.ActiveWindow == 0 {
		cfg.Pipeline.ActiveWindow = 1 * time.Hour
	}
	if cfg.Pipeline.SweepInterval == 0 {
		cfg.Pipeline.SweepInterval = 10 * time.Minute
	}
	if cfg.Pipeline.NotificationBuffer == 0 {
		cfg.Pipeline.NotificationBuffer = 64
	}

	return &cfg, nil
}
