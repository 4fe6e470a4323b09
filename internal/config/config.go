package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionChrome = "chrome"
	SessionStatic = "static"
)

// Config holds all configuration for a smoke run.
type Config struct {
	BaseURL string
	Session string

	// Browser settings
	Headless      bool
	CDPRemote     bool
	CDPAddress    string
	CDPPort       int
	LaunchBrowser bool
	ProfileDir    string
	WindowSize    string
	UserAgent     string

	// Timeouts
	NavTimeoutMS     int
	ElementTimeoutMS int
	FetchTimeoutMS   int
	FetchRate        float64

	// Storage settings
	RegistryFile        string
	DataDir             string
	ReportDir           string
	SnapshotDir         string
	ScreenshotOnFailure bool

	NotifyEndpoint string
	LogLevel       string
	LogFile        string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without Validate, for callers that apply overrides first.
func Read() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BaseURL:             strings.TrimRight(getEnvOrDefault("SMOKE_BASE_URL", "https://www.mozilla.org"), "/"),
		Session:             strings.ToLower(getEnvOrDefault("SMOKE_SESSION", SessionChrome)),
		Headless:            getEnvBoolOrDefault("SMOKE_HEADLESS", true),
		CDPRemote:           getEnvBoolOrDefault("SMOKE_CDP_REMOTE", false),
		CDPAddress:          getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:             getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		LaunchBrowser:       getEnvBoolOrDefault("SMOKE_LAUNCH_BROWSER", false),
		ProfileDir:          getEnvOrDefault("SMOKE_PROFILE_DIR", ""),
		WindowSize:          getEnvOrDefault("SMOKE_WINDOW_SIZE", "1280,1024"),
		UserAgent:           getEnvOrDefault("SMOKE_USER_AGENT", ""),
		NavTimeoutMS:        getEnvIntOrDefault("SMOKE_NAV_TIMEOUT_MS", 30000),
		ElementTimeoutMS:    getEnvIntOrDefault("SMOKE_ELEMENT_TIMEOUT_MS", 5000),
		FetchTimeoutMS:      getEnvIntOrDefault("SMOKE_FETCH_TIMEOUT_MS", 10000),
		FetchRate:           getEnvFloatOrDefault("SMOKE_FETCH_RATE", 5),
		RegistryFile:        getEnvOrDefault("SMOKE_REGISTRY_FILE", ""),
		DataDir:             getEnvOrDefault("SMOKE_DATA_DIR", "./smoke_data"),
		ReportDir:           getEnvOrDefault("SMOKE_REPORT_DIR", "./reports"),
		SnapshotDir:         getEnvOrDefault("SMOKE_SNAPSHOT_DIR", "./snapshots"),
		ScreenshotOnFailure: getEnvBoolOrDefault("SMOKE_SCREENSHOT_ON_FAILURE", true),
		NotifyEndpoint:      getEnvOrDefault("SMOKE_NOTIFY_ENDPOINT", ""),
		LogLevel:            strings.ToLower(getEnvOrDefault("SMOKE_LOG_LEVEL", "info")),
		LogFile:             getEnvOrDefault("SMOKE_LOG_FILE", "logs/contribute_smoke.log"),
	}
	if cfg.NavTimeoutMS < 1000 {
		cfg.NavTimeoutMS = 1000
	}
	if cfg.ElementTimeoutMS < 100 {
		cfg.ElementTimeoutMS = 100
	}
	if cfg.FetchTimeoutMS < 100 {
		cfg.FetchTimeoutMS = 100
	}
	return cfg
}

// Validate rejects settings no run can start with.
func (c *Config) Validate() error {
	switch c.Session {
	case SessionChrome, SessionStatic:
	default:
		return fmt.Errorf("config: SMOKE_SESSION must be %q or %q, got %q", SessionChrome, SessionStatic, c.Session)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("config: SMOKE_BASE_URL must be an http(s) url, got %q", c.BaseURL)
	}
	return nil
}

// GetCDPURL returns the full CDP HTTP endpoint used by chromedp remote allocator.
func (c *Config) GetCDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMS) * time.Millisecond
}

func (c *Config) ElementTimeout() time.Duration {
	return time.Duration(c.ElementTimeoutMS) * time.Millisecond
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
