// Package config loads process settings from config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/studyfocus/internal/planner"
)

const (
	appName        = "studyfocus"
	configFileName = "config.yaml"
	defaultKeyEnv  = "STUDYFOCUS_API_KEY"
)

// Config is the resolved process configuration.
type Config struct {
	LogLevel     string
	LogDir       string
	TickInterval time.Duration
	DBPath       string // empty means the store default
	Planner      planner.Config
}

type yamlConfig struct {
	LogLevel       string      `yaml:"log_level"`
	LogDir         string      `yaml:"log_dir"`
	TickIntervalMS int         `yaml:"tick_interval_ms"`
	DBPath         string      `yaml:"db_path"`
	Planner        yamlPlanner `yaml:"planner"`
}

type yamlPlanner struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

func Default() Config {
	return Config{
		LogLevel:     "info",
		TickInterval: 100 * time.Millisecond,
		Planner:      planner.DefaultConfig(),
	}
}

// DefaultPath returns ~/.config/studyfocus/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load reads path. A missing file yields the defaults. The planner API key
// is taken from the environment variable named by planner.api_key_env.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.Planner.APIKey = os.Getenv(defaultKeyEnv)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var file yamlConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	apply(&cfg, file)
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed. The API key
// itself is never written.
func Save(path string, cfg Config, keyEnv string) error {
	if keyEnv == "" {
		keyEnv = defaultKeyEnv
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	file := yamlConfig{
		LogLevel:       cfg.LogLevel,
		LogDir:         cfg.LogDir,
		TickIntervalMS: int(cfg.TickInterval / time.Millisecond),
		DBPath:         cfg.DBPath,
		Planner: yamlPlanner{
			BaseURL:        cfg.Planner.BaseURL,
			Model:          cfg.Planner.Model,
			APIKeyEnv:      keyEnv,
			MaxTokens:      cfg.Planner.MaxTokens,
			Temperature:    cfg.Planner.Temperature,
			TimeoutSeconds: int(cfg.Planner.Timeout / time.Second),
		},
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func apply(cfg *Config, file yamlConfig) {
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	// below 10ms the ticker only burns CPU
	if file.TickIntervalMS >= 10 {
		cfg.TickInterval = time.Duration(file.TickIntervalMS) * time.Millisecond
	}
	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}

	p := file.Planner
	if p.BaseURL != "" {
		cfg.Planner.BaseURL = p.BaseURL
	}
	if p.Model != "" {
		cfg.Planner.Model = p.Model
	}
	if p.MaxTokens > 0 {
		cfg.Planner.MaxTokens = p.MaxTokens
	}
	if p.Temperature > 0 && p.Temperature <= 2 {
		cfg.Planner.Temperature = p.Temperature
	}
	if p.TimeoutSeconds > 0 {
		cfg.Planner.Timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}

	keyEnv := p.APIKeyEnv
	if keyEnv == "" {
		keyEnv = defaultKeyEnv
	}
	cfg.Planner.APIKey = os.Getenv(keyEnv)
}
