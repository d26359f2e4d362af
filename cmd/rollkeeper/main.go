package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rollkeeper/rollkeeper/internal/blob"
	"github.com/rollkeeper/rollkeeper/internal/config"
	"github.com/rollkeeper/rollkeeper/internal/server"
	"github.com/rollkeeper/rollkeeper/internal/sheet"
	"github.com/rollkeeper/rollkeeper/internal/sheet/pipeline"
	"github.com/rollkeeper/rollkeeper/internal/storage/sqlite"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.IsDebug() {
		logger.Debug("starting with configuration", "config", cfg.String())
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	aliases := sheet.DefaultAliasTable()
	if cfg.AliasOverlay != "" {
		if err := aliases.MergeOverlayFile(cfg.AliasOverlay); err != nil {
			return fmt.Errorf("load alias overlay: %w", err)
		}
		logger.Info("alias overlay loaded", "path", cfg.AliasOverlay)
	}

	pipe, err := pipeline.New(logger, aliases)
	if err != nil {
		return fmt.Errorf("build extraction pipeline: %w", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open sheet store: %w", err)
	}
	defer store.Close()

	blobs, err := blob.NewOsStore(cfg.BlobDir())
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	srv, err := server.New(cfg, server.Deps{
		Store:    store,
		Blobs:    blobs,
		Pipeline: pipe,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	return srv.Start(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printVersion() {
	fmt.Printf("Rollkeeper\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
