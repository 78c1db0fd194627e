// Package config holds the runtime settings of the e-Gov MCP server.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// overrides from the command line and environment (see cmd/egov-mcp, where
// kong binds each flag to its EGOV_* variable).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matsumura-ka/egov-mcp/pkg/egov"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// APIConfig controls the upstream client.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	// RateLimit is the maximum number of requests per second; 0 disables
	// limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// LogConfig controls logging. Logs always go to stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// ServerConfig names the server in the MCP handshake.
type ServerConfig struct {
	Name string `yaml:"name"`
}

// Overrides are values supplied on the command line or through the
// environment. Zero values leave the underlying setting alone.
type Overrides struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64
	LogLevel  string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   egov.DefaultBaseURL,
			Timeout:   egov.DefaultTimeout,
			UserAgent: "egov-mcp",
			RateBurst: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Name: "egov-mcp",
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the file at
// path when path is not empty, then o. The result is validated.
func Resolve(path string, o Overrides) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply copies the non-zero fields of o into c.
func (c *Config) Apply(o Overrides) {
	if o.BaseURL != "" {
		c.API.BaseURL = o.BaseURL
	}
	if o.Timeout > 0 {
		c.API.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		c.API.UserAgent = o.UserAgent
	}
	if o.RateLimit > 0 {
		c.API.RateLimit = o.RateLimit
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

// Validate checks that c can be used to start the server.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q must be an absolute http(s) URL", ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q must be text or json", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// SlogLevel returns the configured log level, info when unparsable.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ClientOptions returns the egov.Client options described by c.
func (c *Config) ClientOptions(logger *slog.Logger) []egov.Option {
	return []egov.Option{
		egov.WithTimeout(c.API.Timeout),
		egov.WithUserAgent(c.API.UserAgent),
		egov.WithRateLimit(c.API.RateLimit, c.API.RateBurst),
		egov.WithLogger(logger),
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}
