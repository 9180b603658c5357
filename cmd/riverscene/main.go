package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"riverscene/internal/config"
	"riverscene/internal/game"

	rl "github.com/gen2brain/raylib-go/raylib"
	flag "github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		slog.Error("riverscene failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.StringP("config", "c", "scene.yaml", "scene config file")
	watch := flag.BoolP("watch", "w", false, "reload the config file when it changes")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	width := flag.Int32("width", 0, "window width, overrides the config")
	height := flag.Int32("height", 0, "window height, overrides the config")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if level <= slog.LevelDebug {
		rl.SetTraceLogLevel(rl.LogDebug)
	} else {
		rl.SetTraceLogLevel(rl.LogWarning)
	}

	// Resolve the config path before moving to the executable's directory.
	if abs, err := filepath.Abs(*configPath); err == nil {
		*configPath = abs
	}

	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			if err := os.Chdir(execDir); err != nil {
				slog.Warn("chdir failed", "dir", execDir, "err", err)
			}
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := game.New(cfg, game.Options{
		ConfigPath: *configPath,
		Watch:      *watch,
		Width:      *width,
		Height:     *height,
	})
	return g.Run(ctx)
}
