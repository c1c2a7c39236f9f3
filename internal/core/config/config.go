package config

import (
	"fmt"
	"time"

	"github.com/vietddude/docpipe/internal/infra/storage/postgres"
	redisclient "github.com/vietddude/docpipe/internal/infra/storage/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	Pipeline PipelineConfig     `yaml:"pipeline"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// PipelineConfig holds lifecycle and retention settings for the
// processing-session engine.
type PipelineConfig struct {
	SessionTTL         time.Duration `yaml:"-"`                   // inactive sessions expire after this
	CheckpointTTL      time.Duration `yaml:"-"`                   // checkpoints eligible for deletion after this
	RestoreWindow      time.Duration `yaml:"-"`                   // checkpoints unrestorable after this
	ActiveWindow       time.Duration `yaml:"-"`                   // sessions counted active within this
	SweepInterval      time.Duration `yaml:"-"`                   // background expiry cadence
	NotificationBuffer int           `yaml:"notification_buffer"` // per-subscriber channel capacity
}

// UnmarshalYAML accepts durations in time.ParseDuration form ("24h", "10m").
func (p *PipelineConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		SessionTTL         string `yaml:"session_ttl"`
		CheckpointTTL      string `yaml:"checkpoint_ttl"`
		RestoreWindow      string `yaml:"restore_window"`
		ActiveWindow       string `yaml:"active_window"`
		SweepInterval      string `yaml:"sweep_interval"`
		NotificationBuffer int    `yaml:"notification_buffer"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"session_ttl", raw.SessionTTL, &p.SessionTTL},
		{"checkpoint_ttl", raw.CheckpointTTL, &p.CheckpointTTL},
		{"restore_window", raw.RestoreWindow, &p.RestoreWindow},
		{"active_window", raw.ActiveWindow, &p.ActiveWindow},
		{"sweep_interval", raw.SweepInterval, &p.SweepInterval},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = d
	}

	p.NotificationBuffer = raw.NotificationBuffer
	return nil
}
