package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/stonepaper/internal/session"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stonepaper.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFullFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
game {
  rounds            = 5
  mode              = "timed"
  countdown_seconds = 7
}

storage {
  driver = "sqlite"
  path   = "history.db"
  key    = "my-scores"
}

server {
  address = "0.0.0.0"
  port    = 9000
}

log {
  level = "debug"
  file  = "stonepaper.log"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Game.Rounds)
	assert.Equal(t, "timed", cfg.Game.Mode)
	assert.Equal(t, 7, cfg.Game.CountdownSeconds)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "history.db", cfg.Storage.Path)
	assert.Equal(t, "my-scores", cfg.Storage.Key)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress())
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "stonepaper.log", cfg.Log.File)

	sess, err := cfg.Session()
	require.NoError(t, err)
	assert.Equal(t, session.Config{
		TotalRounds:    5,
		Mode:           session.Timed,
		CountdownTicks: 7,
		TickInterval:   time.Second,
	}, sess)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
game {
  rounds = 1
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Game.Rounds)
	assert.Equal(t, "standard", cfg.Game.Mode)
	assert.Equal(t, 10, cfg.Game.CountdownSeconds)
	assert.Equal(t, Default().Storage, cfg.Storage)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
}

func TestLoadInvalidSyntax(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `game { rounds = `))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `game { unknown = 1 }`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero rounds", func(c *Config) { c.Game.Rounds = 0 }},
		{"bad mode", func(c *Config) { c.Game.Mode = "blitz" }},
		{"zero countdown", func(c *Config) { c.Game.CountdownSeconds = 0 }},
		{"bad driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"missing path", func(c *Config) { c.Storage.Path = "" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("memory driver needs no path", func(t *testing.T) {
		cfg := Default()
		cfg.Storage.Driver = "memory"
		cfg.Storage.Path = ""
		assert.NoError(t, cfg.Validate())
	})
}
