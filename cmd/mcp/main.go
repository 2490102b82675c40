// Command mcp serves the story engine as MCP tools over stdio.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tatianab/story-adventure/internal/app"
	"github.com/tatianab/story-adventure/internal/config"
	"github.com/tatianab/story-adventure/internal/mcp"
)

// main starts the MCP server on stdio. Logs go to stderr so stdout stays
// reserved for the protocol.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := app.NewLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := mcp.New(a.Engine).RunStdio(ctx); err != nil {
		logger.Error("failed to serve MCP", "error", err)
		a.Close()
		os.Exit(1)
	}
}
