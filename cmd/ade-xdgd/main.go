package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/0xADE/ade-xdgd/internal/category"
	"github.com/0xADE/ade-xdgd/internal/config"
	"github.com/0xADE/ade-xdgd/internal/indexer"
	"github.com/0xADE/ade-xdgd/internal/logging"
	"github.com/0xADE/ade-xdgd/internal/resultdb"
	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
	"github.com/0xADE/ade-xdgd/server"
)

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logging.Setup(os.Stderr, cfg.LogLevel()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	// Start config watcher
	if err := config.Run(); err != nil {
		slog.Error("failed to start config watcher", "error", err)
		os.Exit(1)
	}

	store, err := resultdb.Open(cfg.DBPath())
	if err != nil {
		slog.Error("failed to open result store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	dirLocator := desktop.NewLocator(desktop.DirectoryEntries, cfg.BaseEnv(), cfg.ExtraDirs())
	registry, err := category.Load(dirLocator, category.DefaultMap)
	if err != nil {
		slog.Warn("some menu categories have no directory entry", "error", err)
	}

	idx, err := indexer.NewIndexer(indexer.Options{
		Env:        cfg.BaseEnv(),
		ExtraDirs:  cfg.ExtraDirs(),
		Theme:      cfg.Theme(),
		Size:       cfg.IconSize(),
		Scale:      cfg.IconScale(),
		DesktopEnv: cfg.DesktopEnv(),
		Lang:       cfg.Lang(),
		Workers:    cfg.Workers(),
		Registry:   registry,
	})
	if err != nil {
		slog.Error("failed to create indexer", "error", err)
		os.Exit(1)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial indexing, failures of single entries are only logged
	start := time.Now()
	if err := idx.Start(ctx); err != nil {
		var merr *multierror.Error
		if !errors.As(err, &merr) {
			slog.Error("failed to start indexer", "error", err)
			os.Exit(1)
		}
		for _, e := range merr.Errors {
			slog.Warn("indexer: entry skipped", "error", e)
		}
	}
	logging.Since("initial index built", start, "entries", idx.GetIndex().Count())
	if err := store.Replace(idx.GetIndex().GetAll()); err != nil {
		slog.Error("failed to save index", "error", err)
	}

	srv, err := server.NewServer(idx, store, server.Options{
		SocketPath: cfg.UnixSocket(),
		Env:        cfg.BaseEnv(),
		ExtraDirs:  cfg.ExtraDirs,
		Theme:      cfg.Theme(),
		Size:       cfg.IconSize(),
		Scale:      cfg.IconScale(),
		DesktopEnv: cfg.DesktopEnv(),
		Lang:       cfg.Lang(),
		ThemeTTL:   cfg.ThemeTTL(),
	})
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("ade-xdgd started", "socket", cfg.UnixSocket(), "theme", cfg.Theme())

	select {
	case sig := <-sigChan:
		slog.Info("received signal", "signal", sig)
		cancel()
		idx.Stop()
		if err := srv.Stop(); err != nil {
			slog.Error("error stopping server", "error", err)
		}
	case err := <-serverErr:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("ade-xdgd stopped")
}
