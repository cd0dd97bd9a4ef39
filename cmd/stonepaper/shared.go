package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/stonepaper/internal/config"
	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/randutil"
	"github.com/lox/stonepaper/internal/store"
)

// loadConfig reads the configuration file and applies the global overrides
func loadConfig(g *Globals, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger builds the root logger. Without a log file it writes to stderr,
// or discards everything when quiet is set so a full-screen UI stays intact.
func setupLogger(cfg *config.Config, quiet bool) (*log.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}

	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case quiet:
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           cfg.LogLevel(),
	})
	return logger, closeFn, nil
}

// setupSignalHandler creates a context that is cancelled on interrupt signals
func setupSignalHandler(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// openHistory opens the configured store and the history repository over it
func openHistory(cfg *config.Config, logger *log.Logger) (history.Repository, func(), error) {
	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}
	logger.Debug("Opened store", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	closeFn := func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}
	return history.NewStoreRepository(st, cfg.Storage.Key, logger), closeFn, nil
}

// chooserFor returns a reproducible computer chooser for a fixed seed, or nil
// to let the session pick its own random seed
func chooserFor(seed int64, stream int) game.Chooser {
	if seed == 0 {
		return nil
	}
	return game.NewRandomChooser(randutil.New(randutil.Derive(seed, stream)))
}
