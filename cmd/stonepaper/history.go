package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/stonepaper/internal/history"
)

type HistoryCmd struct {
	Clear bool `help:"Clear the stored history"`

	out io.Writer
}

func (c *HistoryCmd) Run(g *Globals) error {
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

	repo, closeStore, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if c.Clear {
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "History cleared.")
		return nil
	}

	records, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No games played yet.")
		return nil
	}
	_, _ = fmt.Fprintf(out, "Last %d games (oldest first):\n%s\n", len(records), history.Leaderboard(records))
	return nil
}
