// Package config loads settings for the symdiff binaries from an optional
// YAML file and SYMDIFF_* environment variables. Environment variables win.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig `yaml:"engine"`
	Server  ServerConfig `yaml:"server"`
	Logging LogConfig    `yaml:"logging"`
}

// EngineConfig holds differentiation engine settings.
type EngineConfig struct {
	Variable string `yaml:"variable" envconfig:"SYMDIFF_VARIABLE"`
	MaxDepth int    `yaml:"max_depth" envconfig:"SYMDIFF_MAX_DEPTH"`
	Workers  int    `yaml:"workers" envconfig:"SYMDIFF_WORKERS"`
	Simplify bool   `yaml:"simplify" envconfig:"SYMDIFF_SIMPLIFY"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `yaml:"port" envconfig:"SYMDIFF_PORT"`
	Host string `yaml:"host" envconfig:"SYMDIFF_HOST"`

	// ToolTimeout bounds the work done for one tool call.
	ToolTimeout time.Duration `yaml:"tool_timeout" envconfig:"SYMDIFF_TOOL_TIMEOUT"`

	// RateLimit caps tool calls per second; 0 disables the limit.
	RateLimit    float64  `yaml:"rate_limit" envconfig:"SYMDIFF_RATE_LIMIT"`
	RateBurst    int      `yaml:"rate_burst" envconfig:"SYMDIFF_RATE_BURST"`
	AllowOrigins []string `yaml:"allow_origins" envconfig:"SYMDIFF_ALLOW_ORIGINS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `yaml:"level" envconfig:"SYMDIFF_LOG_LEVEL"`
	Development bool   `yaml:"development" envconfig:"SYMDIFF_LOG_DEV"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Variable: symdiff.DefaultVariable,
			MaxDepth: symdiff.DefaultMaxDepth,
			Workers:  0,
			Simplify: true,
		},
		Server: ServerConfig{
			Port:        "8080",
			Host:        "0.0.0.0",
			ToolTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Load applies environment variables over the defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults, then applies environment
// variables. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Engine.Variable == "" {
		return fmt.Errorf("config: variable must not be empty")
	}
	for _, r := range c.Engine.Variable {
		if !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') {
			return fmt.Errorf("config: variable %q must consist of latin letters", c.Engine.Variable)
		}
	}
	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("config: max_depth must not be negative, got %d", c.Engine.MaxDepth)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Engine.Workers)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("config: rate limit must not be negative")
	}
	if c.Server.ToolTimeout < 0 {
		return fmt.Errorf("config: tool_timeout must not be negative, got %s", c.Server.ToolTimeout)
	}
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: invalid port %q", c.Server.Port)
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("config: invalid log level %q", c.Logging.Level)
	}
	return nil
}

// ValidateServer is Validate plus the limits required when serving requests:
// both max_depth and tool_timeout must be positive.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Engine.MaxDepth == 0 {
		return fmt.Errorf("config: max_depth must be positive when serving")
	}
	if c.Server.ToolTimeout == 0 {
		return fmt.Errorf("config: tool_timeout must be positive when serving")
	}
	return nil
}

// Addr is the listen address of the tool server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// LoggerConfig converts the logging section for package logging.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Development = c.Logging.Development
	return cfg
}

// EngineOptions converts the engine section into symdiff options.
func (c *Config) EngineOptions(logger *zap.Logger) []symdiff.Option {
	opts := []symdiff.Option{
		symdiff.WithLogger(logger),
		symdiff.WithMaxDepth(c.Engine.MaxDepth),
		symdiff.WithWorkers(c.Engine.Workers),
	}
	if !c.Engine.Simplify {
		opts = append(opts, symdiff.WithoutSimplification())
	}
	return opts
}
