package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/timewasted/nhl-gamecenter/internal/config"
	"github.com/timewasted/nhl-gamecenter/internal/logging"
	"github.com/timewasted/nhl-gamecenter/internal/server"
)

const appVersion = "dev"

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "nhl-gamecenter",
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("server construction failed", "error", err)
		os.Exit(1)
	}
	srv.Run(ctx, stop)
}
