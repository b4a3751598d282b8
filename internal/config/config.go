// Package config loads settings from a TOML file, a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// DefaultFile is read from the working directory when no path is given.
	DefaultFile = "todos.toml"
	// DefaultEnvFile is loaded into the environment when present.
	DefaultEnvFile = ".env"

	DefaultAPIURL       = "https://mate.academy/students-api"
	DefaultTheme        = "classic"
	DefaultLogLevel     = "info"
	DefaultErrorTimeout = "3s"
	DefaultServerAddr   = "127.0.0.1:8080"
)

// Config holds every setting of the client and the dev server.
type Config struct {
	APIURL string `toml:"api_url"`
	// UserID owns the collection. Zero means not configured.
	UserID         int          `toml:"user_id"`
	Theme          string       `toml:"theme"`
	LogLevel       string       `toml:"log_level"`
	LogFormat      string       `toml:"log_format"`
	LogFile        string       `toml:"log_file"`
	RequestTimeout string       `toml:"request_timeout"`
	ErrorTimeout   string       `toml:"error_timeout"`
	Server         ServerConfig `toml:"server"`

	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

// ServerConfig configures `todo serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	DataFile     string   `toml:"data_file"`
	AllowOrigins []string `toml:"allow_origins"`
	Latency      string   `toml:"latency"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		Theme:        DefaultTheme,
		LogLevel:     DefaultLogLevel,
		LogFormat:    "text",
		ErrorTimeout: DefaultErrorTimeout,
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// Load builds a config from defaults, then path (or DefaultFile when it
// exists), then envFile, then TODOS_* environment variables.
func Load(path, envFile string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				path = ""
			} else {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
		cfg.Path = path
	}

	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TODOS_API_URL", &c.APIURL)
	str("TODOS_THEME", &c.Theme)
	str("TODOS_LOG_LEVEL", &c.LogLevel)
	str("TODOS_LOG_FORMAT", &c.LogFormat)
	str("TODOS_LOG_FILE", &c.LogFile)
	str("TODOS_REQUEST_TIMEOUT", &c.RequestTimeout)
	str("TODOS_SERVER_ADDR", &c.Server.Addr)

	if v, ok := lookup("TODOS_USER_ID"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TODOS_USER_ID: not a number: %q", v)
		}
		c.UserID = id
	}
	return nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url: %q is not an http(s) URL", c.APIURL)
	}
	if c.UserID < 0 {
		return fmt.Errorf("user_id: must not be negative, got %d", c.UserID)
	}
	switch strings.ToLower(c.Theme) {
	case "", "classic", "neon", "mono":
	default:
		return fmt.Errorf("theme: unknown theme %q (want classic, neon or mono)", c.Theme)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	for name, v := range map[string]string{
		"request_timeout": c.RequestTimeout,
		"error_timeout":   c.ErrorTimeout,
		"server.latency":  c.Server.Latency,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Configured reports whether a user id is set.
func (c *Config) Configured() bool { return c.UserID > 0 }

// RequestTimeoutDuration is the per-request limit; zero means none.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.RequestTimeout)
	return d
}

// ErrorTimeoutDuration is how long an error banner stays up.
func (c *Config) ErrorTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.ErrorTimeout)
	return d
}

// LatencyDuration is the artificial delay of the dev server.
func (s ServerConfig) LatencyDuration() time.Duration {
	d, _ := parseDuration(s.Latency)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}
