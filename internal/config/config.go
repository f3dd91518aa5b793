// Package config loads the rep counter configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/repcount/internal/logging"
	"github.com/ayusman/repcount/internal/progress"
)

type Config struct {
	Server        ServerConfig   `yaml:"server"`
	Database      DatabaseConfig `yaml:"database"`
	Logging       LoggingConfig  `yaml:"logging"`
	Camera        CameraConfig   `yaml:"camera"`
	Session       SessionConfig  `yaml:"session"`
	Progress      ProgressConfig `yaml:"progress"`
	Tray          TrayConfig     `yaml:"tray"`
	ExercisesFile string         `yaml:"exercises_file"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

type CameraConfig struct {
	Enabled    bool   `yaml:"enabled"`
	DeviceID   int    `yaml:"device_id"`
	FPS        int    `yaml:"fps"`
	PoseScript string `yaml:"pose_script"`
}

type SessionConfig struct {
	RestSeconds int    `yaml:"rest_seconds"`
	QueueSize   int    `yaml:"queue_size"`
	User        string `yaml:"user"`
}

// Rest returns the rest period between sets.
func (s SessionConfig) Rest() time.Duration {
	return time.Duration(s.RestSeconds) * time.Second
}

type ProgressConfig struct {
	// Endpoint is the base URL of the progress service. Empty disables reporting.
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxAttempts   int           `yaml:"max_attempts"`
	FlushSchedule string        `yaml:"flush_schedule"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Dir returns the per-user data directory, ~/.repcount.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".repcount"), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = ".repcount"
	}
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: filepath.Join(dir, "repcount.db")},
		Logging:  LoggingConfig{Level: "info"},
		Camera:   CameraConfig{FPS: 15},
		Session: SessionConfig{
			RestSeconds: 10,
			QueueSize:   4,
		},
		Progress: ProgressConfig{
			Timeout:       progress.DefaultTimeout,
			MaxAttempts:   progress.DefaultMaxAttempts,
			FlushSchedule: progress.DefaultSchedule,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides and validates. A missing file is not an error.
//
//	REPCOUNT_ADDR, REPCOUNT_DB, REPCOUNT_LOG_LEVEL,
//	REPCOUNT_PROGRESS_ENDPOINT, REPCOUNT_USER
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPCOUNT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REPCOUNT_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REPCOUNT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("REPCOUNT_PROGRESS_ENDPOINT"); v != "" {
		cfg.Progress.Endpoint = v
	}
	if v := os.Getenv("REPCOUNT_USER"); v != "" {
		cfg.Session.User = v
	}
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Session.RestSeconds <= 0 {
		return fmt.Errorf("session.rest_seconds must be positive, got %d", c.Session.RestSeconds)
	}
	if c.Session.QueueSize <= 0 {
		return fmt.Errorf("session.queue_size must be positive, got %d", c.Session.QueueSize)
	}
	if c.Progress.MaxAttempts <= 0 {
		return fmt.Errorf("progress.max_attempts must be positive, got %d", c.Progress.MaxAttempts)
	}
	if c.Progress.Timeout <= 0 {
		return fmt.Errorf("progress.timeout must be positive")
	}
	if err := progress.ValidateSchedule(c.Progress.FlushSchedule); err != nil {
		return fmt.Errorf("progress.flush_schedule: %w", err)
	}
	return nil
}
