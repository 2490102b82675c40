package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tatianab/story-adventure/internal/app"
	"github.com/tatianab/story-adventure/internal/config"
	"github.com/tatianab/story-adventure/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The UI owns the terminal; logs go to STORY_LOG_FILE when set.
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	level, _ := cfg.SlogLevel()
	logger := app.NewLogger(logOut, level, cfg.LogFormat)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("Error creating engine: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := tui.Run(a.Engine); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
