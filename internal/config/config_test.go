package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/njchilds90/symdiff"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "x", cfg.Engine.Variable)
	assert.Equal(t, symdiff.DefaultMaxDepth, cfg.Engine.MaxDepth)
	assert.True(t, cfg.Engine.Simplify)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ToolTimeout)
	require.NoError(t, cfg.ValidateServer())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SYMDIFF_PORT", "9090")
	t.Setenv("SYMDIFF_VARIABLE", "t")
	t.Setenv("SYMDIFF_SIMPLIFY", "false")
	t.Setenv("SYMDIFF_ALLOW_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "t", cfg.Engine.Variable)
	assert.False(t, cfg.Engine.Simplify)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowOrigins)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("SYMDIFF_PORT", "99999")
	_, err := Load()
	assert.Error(t, err)
	assert.Equal(t, "8080", LoadOrDefault().Server.Port)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symdiff.yaml")
	data := []byte(`
engine:
  variable: y
  max_depth: 64
  workers: 4
server:
  port: "7000"
logging:
  level: debug
  development: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "y", cfg.Engine.Variable)
	assert.Equal(t, 64, cfg.Engine.MaxDepth)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.True(t, cfg.Engine.Simplify)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	lc := cfg.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.True(t, lc.Development)

	t.Setenv("SYMDIFF_PORT", "7001")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, "y", cfg.Engine.Variable)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [1, 2"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty variable":  func(c *Config) { c.Engine.Variable = "" },
		"digit variable":  func(c *Config) { c.Engine.Variable = "x1" },
		"greek variable":  func(c *Config) { c.Engine.Variable = "λ" },
		"negative depth":  func(c *Config) { c.Engine.MaxDepth = -1 },
		"negative worker": func(c *Config) { c.Engine.Workers = -2 },
		"port zero":       func(c *Config) { c.Server.Port = "0" },
		"port text":       func(c *Config) { c.Server.Port = "http" },
		"log level":       func(c *Config) { c.Logging.Level = "loud" },
		"negative rate":   func(c *Config) { c.Server.RateLimit = -1 },
		"negative tool":   func(c *Config) { c.Server.ToolTimeout = -time.Second },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.Simplify = false
	e := symdiff.New(cfg.EngineOptions(zap.NewNop())...)
	got, err := e.Differentiate("x^2", "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "(1*2/x+ln(x)*0)*x^2", got)

	cfg.Engine.Simplify = true
	cfg.Engine.MaxDepth = 2
	e = symdiff.New(cfg.EngineOptions(zap.NewNop())...)
	_, err = e.Parse("x+x+x")
	assert.ErrorIs(t, err, symdiff.ErrTooDeep)
}

func TestValidateServerRequiresLimits(t *testing.T) {
	cfg := Default()
	cfg.Engine.MaxDepth = 0
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServer())

	cfg = Default()
	cfg.Server.ToolTimeout = 0
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServer())

	cfg = Default()
	cfg.Server.Port = "http"
	assert.Error(t, cfg.ValidateServer())
}

func TestToolTimeoutFromEnv(t *testing.T) {
	t.Setenv("SYMDIFF_TOOL_TIMEOUT", "250ms")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.ToolTimeout)
}
