// Package bootstrap turns a config.Config into a ready scenario.Runner and
// the resources it owns.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"

	"github.com/dgnsrekt/contribute_smoke/internal/browser"
	"github.com/dgnsrekt/contribute_smoke/internal/config"
	"github.com/dgnsrekt/contribute_smoke/internal/linkcheck"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/dgnsrekt/contribute_smoke/internal/snapshot"
	"github.com/dgnsrekt/contribute_smoke/internal/static"
	"github.com/dgnsrekt/contribute_smoke/internal/storage"
)

const (
	resultsSubDir     = "results"
	resultsName       = "scenario_results"
	resultsBufferSize = 256
	resultsMaxSizeMB  = 50
)

// Stack is everything a run needs. Close releases it in reverse order.
type Stack struct {
	Runner    *scenario.Runner
	Registry  *registry.Registry
	Snapshots *snapshot.Store
	Results   *storage.JSONLWriter
	Report    *scenario.ReportObserver

	closers []func()
}

// LoadRegistry returns the registry file named by cfg, or the built-in one.
func LoadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.RegistryFile == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadFile(cfg.RegistryFile)
	if err != nil {
		return nil, err
	}
	slog.Info("registry loaded", "file", cfg.RegistryFile)
	return reg, nil
}

// PageOptions maps cfg timeouts onto page.Options.
func PageOptions(cfg *config.Config) page.Options {
	return page.Options{
		BaseURL:        cfg.BaseURL,
		ReadyTimeout:   cfg.NavTimeout(),
		ElementTimeout: cfg.ElementTimeout(),
	}
}

// Sessions opens the session factory for cfg.Session. The returned func
// shuts down any browser that was started.
func Sessions(ctx context.Context, cfg *config.Config) (scenario.SessionFactory, func(), error) {
	if cfg.Session == config.SessionStatic {
		opts := static.Options{Timeout: cfg.NavTimeout(), UserAgent: cfg.UserAgent}
		factory := scenario.SessionFactoryFunc(func(context.Context) (page.Session, error) {
			return static.New(opts), nil
		})
		return factory, func() {}, nil
	}

	var launcher *browser.Launcher
	opts := browser.Options{
		Headless:   cfg.Headless,
		WindowSize: cfg.WindowSize,
		UserAgent:  cfg.UserAgent,
		ProfileDir: cfg.ProfileDir,
	}
	switch {
	case cfg.LaunchBrowser:
		launcher = browser.NewLauncher(browser.LaunchConfig{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			ProfileDir: cfg.ProfileDir,
			WindowSize: cfg.WindowSize,
			Headless:   cfg.Headless,
		})
		if err := launcher.Launch(ctx); err != nil {
			return nil, nil, page.NewError(page.CodeSessionUnavailable, "launch browser", err)
		}
		opts.RemoteURL = launcher.CDPURL()
	case cfg.CDPRemote:
		opts.RemoteURL = cfg.GetCDPURL()
	}

	b, err := browser.Start(ctx, opts)
	if err != nil {
		if launcher != nil {
			launcher.Stop()
		}
		return nil, nil, err
	}
	shutdown := func() {
		if err := b.Close(); err != nil {
			slog.Debug("browser close failed", "error", err)
		}
		if launcher != nil {
			launcher.Stop()
		}
	}
	return b, shutdown, nil
}

// Build wires the runner for cfg. Extra observers are notified after the
// built-in report and notification observers.
func Build(ctx context.Context, cfg *config.Config, observers ...scenario.Observer) (*Stack, error) {
	st := &Stack{}

	reg, err := LoadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	st.Registry = reg

	sessions, shutdown, err := Sessions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, shutdown)

	var shots *snapshot.Store
	if cfg.ScreenshotOnFailure && cfg.Session == config.SessionChrome {
		shots, err = snapshot.NewStore(cfg.SnapshotDir)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
	}
	st.Snapshots = shots

	st.Results = storage.NewJSONLWriter(cfg.DataDir, resultsSubDir, resultsName, resultsBufferSize, resultsMaxSizeMB)
	st.closers = append(st.closers, func() {
		if err := st.Results.Close(); err != nil {
			slog.Warn("results writer close failed", "error", err)
		}
	})

	st.Report = &scenario.ReportObserver{Dir: cfg.ReportDir}
	all := []scenario.Observer{st.Report}
	if cfg.NotifyEndpoint != "" {
		all = append(all, &scenario.NotifyObserver{Endpoint: cfg.NotifyEndpoint, Client: http.DefaultClient})
	}
	all = append(all, observers...)

	runnerOpts := scenario.RunnerOptions{
		Sessions:    sessions,
		Registry:    reg,
		PageOptions: PageOptions(cfg),
		Fetcher: linkcheck.NewStatusFetcher(linkcheck.FetcherOptions{
			Timeout:   cfg.FetchTimeout(),
			RatePerS:  cfg.FetchRate,
			UserAgent: cfg.UserAgent,
		}),
		Mode:        cfg.Session,
		Screenshots: shots,
		Results:     st.Results,
		Observers:   all,
	}
	st.Runner = scenario.NewRunner(runnerOpts)
	return st, nil
}

// Close releases the browser and flushes the result log.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// History reads recorded scenario results across every dated partition of
// cfg.DataDir, oldest first, keeping at most the last limit entries.
func History(cfg *config.Config, limit int) ([]scenario.Result, error) {
	// Rotated backups are named <name>-<timestamp>.jsonl and sort before the
	// live file of the same day.
	paths, err := filepath.Glob(filepath.Join(cfg.DataDir, "*", resultsSubDir, resultsName+"*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []scenario.Result
	for _, path := range paths {
		results, err := storage.ReadJSONL[scenario.Result](path)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
