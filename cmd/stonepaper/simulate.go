package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lox/stonepaper/internal/simulator"
)

type SimulateCmd struct {
	Sessions int   `short:"n" default:"10000" help:"Number of sessions to simulate"`
	Rounds   int   `short:"r" help:"Rounds per session (defaults to config)"`
	Seed     int64 `default:"0" help:"RNG seed (0 for random)"`
	Workers  int   `short:"w" default:"0" help:"Concurrent sessions (0 for one per CPU)"`

	out io.Writer
}

func (c *SimulateCmd) Run(g *Globals) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	cfg, err := loadConfig(g, nil)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	rounds := c.Rounds
	if rounds == 0 {
		rounds = cfg.Game.Rounds
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	stats, err := simulator.New(simulator.Config{
		Sessions: c.Sessions,
		Rounds:   rounds,
		Workers:  c.Workers,
		Seed:     seed,
		Logger:   logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(out, stats)
	_, _ = fmt.Fprintf(out, "\nSeed: %d, elapsed %s\n", seed, time.Since(start).Round(time.Millisecond))
	return nil
}
