package config

import (
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SMOKE_BASE_URL", "")
	t.Setenv("SMOKE_SESSION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.BaseURL, "https://www.mozilla.org"; got != want {
		t.Fatalf("BaseURL = %q; want %q", got, want)
	}
	if got, want := cfg.Session, SessionChrome; got != want {
		t.Fatalf("Session = %q; want %q", got, want)
	}
	if got, want := cfg.FetchTimeout(), 10*time.Second; got != want {
		t.Fatalf("FetchTimeout() = %v; want %v", got, want)
	}
	if got, want := cfg.NavTimeout(), 30*time.Second; got != want {
		t.Fatalf("NavTimeout() = %v; want %v", got, want)
	}
	if got, want := cfg.FetchRate, 5.0; got != want {
		t.Fatalf("FetchRate = %v; want %v", got, want)
	}
	if !cfg.Headless || !cfg.ScreenshotOnFailure {
		t.Fatalf("Headless = %v, ScreenshotOnFailure = %v; want both true", cfg.Headless, cfg.ScreenshotOnFailure)
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("SMOKE_BASE_URL", "http://127.0.0.1:8080/")
	t.Setenv("SMOKE_SESSION", "STATIC")
	t.Setenv("SMOKE_NAV_TIMEOUT_MS", "10")
	t.Setenv("SMOKE_FETCH_RATE", "0.5")
	t.Setenv("SMOKE_HEADLESS", "false")
	t.Setenv("SMOKE_ELEMENT_TIMEOUT_MS", "not-a-number")
	t.Setenv("CHROMIUM_CDP_PORT", "9333")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := cfg.BaseURL, "http://127.0.0.1:8080"; got != want {
		t.Fatalf("BaseURL = %q; want %q", got, want)
	}
	if got, want := cfg.Session, SessionStatic; got != want {
		t.Fatalf("Session = %q; want %q", got, want)
	}
	if got, want := cfg.NavTimeoutMS, 1000; got != want {
		t.Fatalf("NavTimeoutMS = %d; want %d", got, want)
	}
	if got, want := cfg.ElementTimeoutMS, 5000; got != want {
		t.Fatalf("ElementTimeoutMS = %d; want %d", got, want)
	}
	if got, want := cfg.FetchRate, 0.5; got != want {
		t.Fatalf("FetchRate = %v; want %v", got, want)
	}
	if cfg.Headless {
		t.Fatal("Headless = true; want false")
	}
	if got, want := cfg.GetCDPURL(), "http://127.0.0.1:9333"; got != want {
		t.Fatalf("GetCDPURL() = %q; want %q", got, want)
	}
}

func TestLoadRejectsUnknownSession(t *testing.T) {
	t.Setenv("SMOKE_SESSION", "firefox")
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil; want error for unknown session")
	}
}

func TestLoadRejectsNonHTTPBaseURL(t *testing.T) {
	t.Setenv("SMOKE_BASE_URL", "ftp://mozilla.org")
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil; want error for ftp base url")
	}
}

func TestLoadController(t *testing.T) {
	t.Setenv("SMOKE_SESSION", "")
	t.Setenv("CONTROLLER_BIND_ADDR", "127.0.0.1:9001")
	t.Setenv("CONTROLLER_PORT_CANDIDATES", " 127.0.0.1:9002, ,127.0.0.1:9003")
	t.Setenv("CONTROLLER_PORT_AUTO_FALLBACK", "false")

	cfg, err := LoadController()
	if err != nil {
		t.Fatalf("LoadController() error = %v", err)
	}
	if got, want := cfg.BindAddr, "127.0.0.1:9001"; got != want {
		t.Fatalf("BindAddr = %q; want %q", got, want)
	}
	if want := []string{"127.0.0.1:9002", "127.0.0.1:9003"}; !slices.Equal(cfg.PortCandidates, want) {
		t.Fatalf("PortCandidates = %v; want %v", cfg.PortCandidates, want)
	}
	if cfg.PortAutoFallback {
		t.Fatal("PortAutoFallback = true; want false")
	}
	if cfg.BaseURL == "" {
		t.Fatal("embedded run config not loaded")
	}
}
