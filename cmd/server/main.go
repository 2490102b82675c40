// Command server serves the story engine over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tatianab/story-adventure/internal/app"
	"github.com/tatianab/story-adventure/internal/config"
	"github.com/tatianab/story-adventure/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := app.NewLogger(os.Stdout, level, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := server.Options{
		Origins:       cfg.CORSOrigins,
		RatePerMinute: cfg.RatePerMinute,
		Logger:        logger,
	}
	if a.Journal != nil {
		opts.Transcripts = a.Journal
	}
	srv := server.New(a.Engine, opts)

	logger.Info("story server starting", "addr", cfg.HTTPAddr, "provider", cfg.Provider, "max_turns", a.Engine.MaxTurns())
	if err := server.Run(ctx, cfg.HTTPAddr, srv.Handler(), logger); err != nil {
		logger.Error("server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
	logger.Info("story server stopped")
}
