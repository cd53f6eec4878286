// Package config layers service settings: built-in defaults, then an
// optional YAML file, then environment variables. Environment wins.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvAddr          = "GOALCUT_ADDR"
	EnvWorkDir       = "GOALCUT_WORK_DIR"
	EnvWatchDir      = "GOALCUT_WATCH_DIR"
	EnvChunkSeconds  = "GOALCUT_CHUNK_SECONDS"
	EnvMaxDuration   = "GOALCUT_MAX_DURATION"
	EnvMaxUploadMB   = "GOALCUT_MAX_UPLOAD_MB"
	EnvMaxConcurrent = "GOALCUT_MAX_CONCURRENT"
	EnvChatModel     = "GOALCUT_CHAT_MODEL"
)

// Config holds every tunable of the service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// WorkDir is where downloads, uploads, chunks, and outputs live.
	WorkDir string `yaml:"work_dir"`

	// WatchDir, when set, is monitored for dropped media files.
	WatchDir string `yaml:"watch_dir"`

	// ChunkSeconds is the transcription chunk length.
	ChunkSeconds float64 `yaml:"chunk_seconds"`

	// MaxDurationSeconds caps source length; 0 disables the cap.
	MaxDurationSeconds float64 `yaml:"max_duration_seconds"`

	// MaxUploadMB caps uploaded file sizes.
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// MaxConcurrent bounds simultaneously running pipelines.
	MaxConcurrent int `yaml:"max_concurrent"`

	// ChatModel is the classifier's chat model.
	ChatModel string `yaml:"chat_model"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:               ":8080",
		WorkDir:            "data",
		ChunkSeconds:       60,
		MaxDurationSeconds: 300,
		MaxUploadMB:        500,
		MaxConcurrent:      4,
		ChatModel:          "gpt-4o",
	}
}

// Load builds the effective configuration. path may be empty (no file);
// a named file that does not exist is an error, so a typoed --config flag
// never silently falls back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's flag
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvWorkDir); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv(EnvWatchDir); v != "" {
		c.WatchDir = v
	}
	if v := os.Getenv(EnvChatModel); v != "" {
		c.ChatModel = v
	}
	if v := os.Getenv(EnvChunkSeconds); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvChunkSeconds, err)
		}
		c.ChunkSeconds = f
	}
	if v := os.Getenv(EnvMaxDuration); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDuration, err)
		}
		c.MaxDurationSeconds = f
	}
	if v := os.Getenv(EnvMaxUploadMB); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUploadMB, err)
		}
		c.MaxUploadMB = n
	}
	if v := os.Getenv(EnvMaxConcurrent); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxConcurrent, err)
		}
		c.MaxConcurrent = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.ChunkSeconds <= 0 {
		return fmt.Errorf("chunk_seconds must be positive, got %g", c.ChunkSeconds)
	}
	if c.MaxDurationSeconds < 0 {
		return fmt.Errorf("max_duration_seconds must be >= 0, got %g", c.MaxDurationSeconds)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive, got %d", c.MaxConcurrent)
	}
	return nil
}

// MaxUploadBytes converts the upload cap to bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
