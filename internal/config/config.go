// Package config resolves runtime settings from defaults, an optional YAML
// file and SHARPEI_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StoreURL       string        `yaml:"store_url"`
	ListenAddr     string        `yaml:"listen_addr"`
	DBPath         string        `yaml:"db_path"`
	StateFile      string        `yaml:"state_file"`
	LogFile        string        `yaml:"log_file"`
	LogLevel       string        `yaml:"log_level"`
	ErrorDisplay   time.Duration `yaml:"error_display"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func Default() Config {
	return Config{
		StoreURL:       "http://127.0.0.1:8000",
		ListenAddr:     ":8000",
		DBPath:         "sharpei.db",
		StateFile:      ".sharpei_state.json",
		LogFile:        "sharpei.log",
		LogLevel:       "info",
		ErrorDisplay:   4 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// DefaultPath is ~/.config/sharpei/config.yaml, or "" when there is no
// resolvable config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sharpei", "config.yaml")
}

// Load applies the YAML file at path over the defaults and then the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("SHARPEI_STORE_URL"); ok {
		cfg.StoreURL = v
	}
	if v, ok := getEnvString("SHARPEI_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := getEnvString("SHARPEI_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("SHARPEI_STATE_FILE"); ok {
		cfg.StateFile = v
	}
	if v, ok := getEnvString("SHARPEI_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("SHARPEI_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvInt("SHARPEI_ERROR_DISPLAY_SECONDS"); ok && v > 0 {
		cfg.ErrorDisplay = time.Duration(v) * time.Second
	}
	if v, ok := getEnvInt("SHARPEI_REQUEST_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.StoreURL) == "" {
		return errors.New("config: store_url is required")
	}
	if c.ErrorDisplay <= 0 {
		return fmt.Errorf("config: error_display must be positive, got %s", c.ErrorDisplay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
