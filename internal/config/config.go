// Package config loads the stonepaper HCL configuration file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/session"
	"github.com/lox/stonepaper/internal/store"
)

// DefaultFile is the configuration file read when no path is given
const DefaultFile = "stonepaper.hcl"

// Config represents the complete configuration
type Config struct {
	Game    GameSettings    `hcl:"game,block"`
	Storage StorageSettings `hcl:"storage,block"`
	Server  ServerSettings  `hcl:"server,block"`
	Log     LogSettings     `hcl:"log,block"`
}

// GameSettings controls new sessions
type GameSettings struct {
	Rounds           int    `hcl:"rounds,optional"`
	Mode             string `hcl:"mode,optional"`
	CountdownSeconds int    `hcl:"countdown_seconds,optional"`
}

// StorageSettings selects where history is kept
type StorageSettings struct {
	Driver string `hcl:"driver,optional"`
	Path   string `hcl:"path,optional"`
	Key    string `hcl:"key,optional"`
}

// ServerSettings contains the browser server's listen address
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// LogSettings controls the root logger
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// file mirrors Config with optional blocks so any of them may be omitted
type file struct {
	Game    *GameSettings    `hcl:"game,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Server  *ServerSettings  `hcl:"server,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Game: GameSettings{
			Rounds:           3,
			Mode:             session.Standard.String(),
			CountdownSeconds: 10,
		},
		Storage: StorageSettings{
			Driver: store.DriverFile,
			Path:   "stonepaper.json",
			Key:    history.DefaultKey,
		},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; fields left out of the file keep their default values.
func Load(filename string) (*Config, error) {
	config := Default()
	if filename == "" {
		return config, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.merge(raw)
	return config, nil
}

func (c *Config) merge(raw file) {
	if g := raw.Game; g != nil {
		if g.Rounds != 0 {
			c.Game.Rounds = g.Rounds
		}
		if g.Mode != "" {
			c.Game.Mode = g.Mode
		}
		if g.CountdownSeconds != 0 {
			c.Game.CountdownSeconds = g.CountdownSeconds
		}
	}
	if s := raw.Storage; s != nil {
		if s.Driver != "" {
			c.Storage.Driver = s.Driver
		}
		if s.Path != "" {
			c.Storage.Path = s.Path
		}
		if s.Key != "" {
			c.Storage.Key = s.Key
		}
	}
	if s := raw.Server; s != nil {
		if s.Address != "" {
			c.Server.Address = s.Address
		}
		if s.Port != 0 {
			c.Server.Port = s.Port
		}
	}
	if l := raw.Log; l != nil {
		if l.Level != "" {
			c.Log.Level = l.Level
		}
		if l.File != "" {
			c.Log.File = l.File
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Game.Rounds < 1 {
		return fmt.Errorf("game: rounds must be positive, got %d", c.Game.Rounds)
	}
	if _, err := session.ParseMode(c.Game.Mode); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if c.Game.CountdownSeconds < 1 {
		return fmt.Errorf("game: countdown_seconds must be positive, got %d", c.Game.CountdownSeconds)
	}

	if !slices.Contains(store.Drivers, strings.ToLower(c.Storage.Driver)) {
		return fmt.Errorf("storage: %w: %q", store.ErrUnknownDriver, c.Storage.Driver)
	}
	if c.Storage.Driver != store.DriverMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage: path is required for driver %q", c.Storage.Driver)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port: %d", c.Server.Port)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// Session converts the game block into the session manager's configuration
func (c *Config) Session() (session.Config, error) {
	mode, err := session.ParseMode(c.Game.Mode)
	if err != nil {
		return session.Config{}, err
	}
	cfg := session.DefaultConfig()
	cfg.TotalRounds = c.Game.Rounds
	cfg.Mode = mode
	cfg.CountdownTicks = c.Game.CountdownSeconds
	cfg.TickInterval = time.Second
	return cfg, nil
}

// ServerAddress returns the host:port the browser server listens on
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// LogLevel returns the parsed log level, falling back to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
