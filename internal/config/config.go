// Package config loads pollctl and pollserver settings.
//
// Values are layered: built-in defaults, then the YAML file named by
// POLLCTL_CONFIG (or $XDG_CONFIG_HOME/pollctl/config.yaml when it exists),
// then environment variables, optionally read from a .env file. Command line
// flags are applied last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL     = "http://localhost:8000/api"
	DefaultServerAddr = "127.0.0.1:8000"
	DefaultTokenTTL   = 24 * time.Hour
	DefaultJWTSecret  = "change-me-in-production"
	appName           = "pollctl"
)

type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`

	// Path is the YAML file the config was read from, if any.
	Path string `yaml:"-"`
}

type ClientConfig struct {
	APIURL    string `yaml:"api_url"`
	TokenFile string `yaml:"token_file"`
}

type ServerConfig struct {
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// DatabaseURL selects the PostgreSQL backend. Empty keeps data in memory.
	DatabaseURL string `yaml:"database_url"`
}

type LogConfig struct {
	Level string `yaml:"level"`

	// File receives the TUI's log output. Empty disables TUI logging.
	File string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Client: ClientConfig{
			APIURL:    DefaultAPIURL,
			TokenFile: filepath.Join(configDir(), "token"),
		},
		Server: ServerConfig{
			Addr:      DefaultServerAddr,
			JWTSecret: DefaultJWTSecret,
			TokenTTL:  DefaultTokenTTL,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the configuration. A missing default config file is not an
// error; a missing file named by POLLCTL_CONFIG is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("POLLCTL_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(configDir(), "config.yaml")
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv() error {
	c.Client.APIURL = getEnv("POLL_API_URL", c.Client.APIURL)
	c.Client.TokenFile = getEnv("POLL_TOKEN_FILE", c.Client.TokenFile)
	c.Log.Level = getEnv("POLL_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("POLL_LOG_FILE", c.Log.File)
	c.Server.Addr = getEnv("POLL_SERVER_ADDR", c.Server.Addr)
	c.Server.JWTSecret = getEnv("JWT_SECRET", c.Server.JWTSecret)
	c.Server.DatabaseURL = getEnv("DATABASE_URL", c.Server.DatabaseURL)

	if v := os.Getenv("POLL_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid POLL_TOKEN_TTL %q: %w", v, err)
		}
		c.Server.TokenTTL = ttl
	}
	c.Client.TokenFile = expandHome(c.Client.TokenFile)
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(".", "."+appName)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
