package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/api"
	"github.com/dgnsrekt/contribute_smoke/internal/bootstrap"
	"github.com/dgnsrekt/contribute_smoke/internal/config"
	"github.com/dgnsrekt/contribute_smoke/internal/controller"
	"github.com/dgnsrekt/contribute_smoke/internal/logging"
	"github.com/dgnsrekt/contribute_smoke/internal/netutil"
	"github.com/dgnsrekt/contribute_smoke/internal/relay"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
)

func main() {
	cfg, err := config.LoadController()
	if err != nil {
		slog.Error("failed to load controller config", "error", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogFile, os.Stdout)
	if err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()

	slog.Info("smoke_controller config loaded",
		"bind_addr", cfg.BindAddr,
		"base_url", cfg.BaseURL,
		"session", cfg.Session,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
		"snapshot_dir", cfg.SnapshotDir,
	)

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()

	broker := relay.NewBroker()
	stack, err := bootstrap.Build(context.Background(), cfg.Config, relay.NewObserver(broker))
	if err != nil {
		slog.Error("failed to build smoke runner", "session", cfg.Session, "error", err)
		_ = ln.Close()
		os.Exit(1)
	}
	defer stack.Close()

	svc := controller.NewService(controller.Options{
		Runner:            stack.Runner,
		Scenarios:         scenario.All(),
		Registry:          stack.Registry,
		Snapshots:         stack.Snapshots,
		SnapshotRetention: cfg.SnapshotRetention,
	})
	defer svc.Close()

	srv := &http.Server{Handler: api.NewServer(svc, broker), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("smoke_controller listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("smoke_controller server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("smoke_controller shutdown failed", "error", err)
	}
}
