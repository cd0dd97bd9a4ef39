package main

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/lox/stonepaper/internal/config"
	"github.com/lox/stonepaper/internal/game"
	"github.com/lox/stonepaper/internal/server"
)

type ServeCmd struct {
	Addr string `short:"a" help:"Address to listen on as host:port (overrides config)"`
	Seed int64  `default:"0" help:"RNG seed for the computer (0 for random)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	var addrErr error
	cfg, err := loadConfig(g, func(cfg *config.Config) {
		if c.Addr == "" {
			return
		}
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			addrErr = err
			return
		}
		cfg.Server.Address = host
		cfg.Server.Port, addrErr = strconv.Atoi(port)
	})
	if addrErr != nil {
		return addrErr
	}
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

	sessionCfg, err := cfg.Session()
	if err != nil {
		return err
	}
	opts := []server.Option{server.WithSessionConfig(sessionCfg)}
	if c.Seed != 0 {
		opts = append(opts, server.WithChooserFactory(func(n int) game.Chooser {
			return chooserFor(c.Seed, n)
		}))
	}

	srv := server.NewServer(cfg.ServerAddress(), repo, logger, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop server cleanly", "error", err)
	}
	return <-errCh
}
