package main

import (
	"context"
	"log"
	"os"

	"github.com/rburnham/asq/internal/api"
	"github.com/rburnham/asq/internal/config"
	"github.com/rburnham/asq/internal/driver"
	"github.com/rburnham/asq/internal/driver/sqlite"
	"github.com/rburnham/asq/internal/reactor"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("asqd: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
	)

	loop := reactor.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("reactor loop stopped", "error", err)
		}
	}()

	newConn := func() (driver.Conn, error) {
		return sqlite.Open(cfg.DBPath)
	}

	srv := api.NewServer(cfg.ListenAddr, loop, newConn, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
