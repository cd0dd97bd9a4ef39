package main

import (
	"github.com/lox/stonepaper/internal/config"
	"github.com/lox/stonepaper/internal/session"
	"github.com/lox/stonepaper/internal/store"
	"github.com/lox/stonepaper/internal/tui"
)

type PlayCmd struct {
	Rounds    int    `short:"r" help:"Rounds per game (overrides config)"`
	Mode      string `short:"m" help:"Game mode: standard or timed (overrides config)"`
	Seed      int64  `default:"0" help:"RNG seed for the computer (0 for random)"`
	Ephemeral bool   `help:"Keep history in memory only"`
	NoColor   bool   `help:"Disable colors"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g, func(cfg *config.Config) {
		if c.Rounds != 0 {
			cfg.Game.Rounds = c.Rounds
		}
		if c.Mode != "" {
			cfg.Game.Mode = c.Mode
		}
		if c.Ephemeral {
			cfg.Storage.Driver = store.DriverMemory
		}
	})
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	repo, closeStore, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sessionCfg, err := cfg.Session()
	if err != nil {
		return err
	}
	opts := []session.Option{
		session.WithConfig(sessionCfg),
		session.WithContext(ctx),
	}
	if chooser := chooserFor(c.Seed, 0); chooser != nil {
		opts = append(opts, session.WithChooser(chooser))
	}

	manager, err := session.NewManager(repo, logger, opts...)
	if err != nil {
		return err
	}
	defer manager.Close()

	logger.Info("Starting terminal game",
		"rounds", sessionCfg.TotalRounds,
		"mode", sessionCfg.Mode,
		"storage", cfg.Storage.Driver)

	tui.SetColor(!c.NoColor)
	return tui.Run(ctx, manager, logger)
}
