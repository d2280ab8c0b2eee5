package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// ConfigFileName is looked up inside the data directory.
const ConfigFileName = "config.yaml"

// Config holds application configuration.
type Config struct {
	DataDir         string        `yaml:"data_dir"`
	Store           string        `yaml:"store"`
	Timeout         time.Duration `yaml:"timeout"`
	FollowRedirects bool          `yaml:"follow_redirects"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	NoticeDuration  time.Duration `yaml:"notice_duration"`
	LogFile         string        `yaml:"log_file"`
	LogLevel        string        `yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:         "~/.almagro",
		Store:           StoreSQLite,
		Timeout:         30 * time.Second,
		FollowRedirects: true,
		TickInterval:    250 * time.Millisecond,
		NoticeDuration:  3 * time.Second,
		LogLevel:        "info",
	}
}

// LoadConfig overlays the YAML file at path onto base. A missing file is not
// an error.
func LoadConfig(path string, base Config) (Config, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return base, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot use.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreFile:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreFile)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive: %s", c.TickInterval)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolveDataDir returns the data directory with a leading ~ expanded.
func (c Config) ResolveDataDir() (string, error) {
	return ExpandHome(c.DataDir)
}

// LogPath returns the configured log file, defaulting to almagro.log inside
// dataDir.
func (c Config) LogPath(dataDir string) (string, error) {
	if c.LogFile == "" {
		return filepath.Join(dataDir, "almagro.log"), nil
	}
	return ExpandHome(c.LogFile)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ParseLevel parses debug, info, warn or error. The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
