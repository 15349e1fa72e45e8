package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"petlink/pkg/store"
)

const (
	defaultAPIBaseURL = "http://localhost:8000"
	defaultLogLevel   = "warn"
	defaultLogFormat  = "text"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL    string `yaml:"apiBaseURL"`
	LogLevel      string `yaml:"logLevel"`
	LogFormat     string `yaml:"logFormat"`
	HTTPTimeout   string `yaml:"httpTimeout"`
	Timezone      string `yaml:"timezone"`
	Storage       string `yaml:"storage"`
	StatePath     string `yaml:"statePath"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisPrefix   string `yaml:"redisPrefix"`
	DatabaseURL   string `yaml:"databaseURL"`
}

// ConfigDir returns the per-user config directory for petlink.
func ConfigDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "petlink")
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "petlink")
	}
	return ".petlink"
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads config from path. An empty path means the default location,
// which may be absent; an explicit path must exist. Env overrides are
// applied after the file.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = ConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("PETLINK_API_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("PETLINK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("PETLINK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.TrimSpace(v)
	}
	if v := os.Getenv("PETLINK_HTTP_TIMEOUT"); v != "" {
		cfg.HTTPTimeout = strings.TrimSpace(v)
	}
	if v := os.Getenv("PETLINK_TIMEZONE"); v != "" {
		cfg.Timezone = strings.TrimSpace(v)
	}
	if v := os.Getenv("PETLINK_STORAGE"); v != "" {
		cfg.Storage = strings.TrimSpace(v)
	}
	if v := os.Getenv("PETLINK_STATE_PATH"); v != "" {
		cfg.StatePath = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("PETLINK_REDIS_PREFIX"); v != "" {
		cfg.RedisPrefix = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
}

func applyDefaults(cfg *FileConfig) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}
	if cfg.Storage == "" {
		cfg.Storage = store.BackendFile
	}
	if cfg.StatePath == "" {
		cfg.StatePath = filepath.Join(ConfigDir(), "session.yaml")
	}
}

func validateConfig(cfg FileConfig) error {
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return errors.New("config: apiBaseURL must be an http(s) URL (set in config.yaml or PETLINK_API_URL)")
	}
	if _, err := ParseHTTPTimeout(cfg.HTTPTimeout); err != nil {
		return err
	}
	if _, err := ParseTimezone(cfg.Timezone); err != nil {
		return err
	}
	switch strings.ToLower(cfg.Storage) {
	case store.BackendFile, store.BackendMemory:
	case store.BackendRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required for redis storage")
		}
	case store.BackendPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown storage %q (file, redis, postgres, memory)", cfg.Storage)
	}
	return nil
}

// StoreOptions maps the storage settings onto store.Options.
func (c FileConfig) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Storage,
		StatePath:     c.StatePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisPrefix:   c.RedisPrefix,
		DatabaseURL:   c.DatabaseURL,
	}
}

// ParseHTTPTimeout parses the optional timeout; empty means the transport
// default.
func ParseHTTPTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid httpTimeout duration: %w", err)
	}
	if dur < 0 {
		return 0, errors.New("invalid httpTimeout duration: must be >= 0")
	}
	return dur, nil
}

// ParseTimezone resolves the zone used for zone-less dates. Empty means the
// local zone.
func ParseTimezone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return loc, nil
}
