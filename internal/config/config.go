package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything pushboard needs to reach a Parse server.
type Config struct {
	ServerURL      string
	AppID          string
	MasterKey      string
	RequestTimeout time.Duration
	LogFile        string
	LogLevel       slog.Level
	Filters        FilterConfig
}

// FilterConfig sizes the filter list fetch.
type FilterConfig struct {
	// InitialPageSize is the number of filters a cached collection must hold
	// to satisfy a fetch.
	InitialPageSize int
	// ShowMoreLimit is how many filters a fetch asks the server for.
	ShowMoreLimit int
}

const (
	defaultConfigPath      = "~/.config/pushboard/config.toml"
	defaultServerURL       = "http://127.0.0.1:1337/parse"
	defaultAppID           = "pushboard"
	defaultRequestTimeout  = 10 * time.Second
	defaultLogFile         = "~/.local/state/pushboard/pushboard.log"
	defaultInitialPageSize = 10
	defaultShowMoreLimit   = 1000
)

// Environment variables that take precedence over the file.
const (
	EnvMasterKey = "PUSHBOARD_MASTER_KEY"
	EnvServerURL = "PUSHBOARD_SERVER_URL"
)

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:      defaultServerURL,
		AppID:          defaultAppID,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       slog.LevelInfo,
		Filters: FilterConfig{
			InitialPageSize: defaultInitialPageSize,
			ShowMoreLimit:   defaultShowMoreLimit,
		},
	}
}

type rawConfig struct {
	ServerURL      string `toml:"server_url"`
	AppID          string `toml:"app_id"`
	MasterKey      string `toml:"master_key"`
	RequestTimeout string `toml:"request_timeout"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
	Filters        struct {
		InitialPageSize *int `toml:"initial_page_size"`
		ShowMoreLimit   *int `toml:"show_more_limit"`
	} `toml:"filters"`
}

// Load locates and parses the pushboard config, falling back to defaults when
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(raw.AppID); v != "" {
		cfg.AppID = v
	}
	cfg.MasterKey = strings.TrimSpace(raw.MasterKey)

	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: request_timeout: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("parse config: request_timeout must be positive, got %s", v)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.LogLevel = level
	}

	if n := raw.Filters.InitialPageSize; n != nil {
		if *n <= 0 {
			return Config{}, fmt.Errorf("parse config: filters.initial_page_size must be positive, got %d", *n)
		}
		cfg.Filters.InitialPageSize = *n
	}
	if n := raw.Filters.ShowMoreLimit; n != nil {
		if *n <= 0 {
			return Config{}, fmt.Errorf("parse config: filters.show_more_limit must be positive, got %d", *n)
		}
		cfg.Filters.ShowMoreLimit = *n
	}

	applyEnv(&cfg)
	return cfg, nil
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	// "warning" is a common spelling that slog does not accept.
	if strings.EqualFold(strings.TrimSpace(name), "warning") {
		name = "warn"
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", name, err)
	}
	return level, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvMasterKey)); v != "" {
		cfg.MasterKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		cfg.ServerURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
