package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"syscall"
	"time"
)

// LaunchConfig describes a Chromium process started with remote debugging so
// that Start can attach to it through RemoteURL.
type LaunchConfig struct {
	CDPAddress string
	CDPPort    int
	ProfileDir string
	WindowSize string
	Headless   bool
	// ReadyTimeout bounds the wait for /json/version. Defaults to 15s.
	ReadyTimeout time.Duration
}

// Launcher manages the lifecycle of a browser process.
type Launcher struct {
	cfg     LaunchConfig
	cmd     *exec.Cmd
	running bool
}

func NewLauncher(cfg LaunchConfig) *Launcher {
	if cfg.WindowSize == "" {
		cfg.WindowSize = "1920,1080"
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 15 * time.Second
	}
	return &Launcher{cfg: cfg}
}

// CDPURL is the HTTP endpoint the launched browser serves CDP on.
func (l *Launcher) CDPURL() string {
	return "http://" + net.JoinHostPort(l.cfg.CDPAddress, strconv.Itoa(l.cfg.CDPPort))
}

// detectBrowser finds an available Chrome/Chromium binary.
func detectBrowser() (string, error) {
	candidates := []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if runtime.GOOS == "darwin" {
		macPath := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		if _, err := os.Stat(macPath); err == nil {
			return macPath, nil
		}
	}
	return "", fmt.Errorf("no supported browser found (tried %v)", candidates)
}

func isPortInUse(address string, port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(address, strconv.Itoa(port)), time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Launch starts the browser unless something already listens on the CDP port.
func (l *Launcher) Launch(ctx context.Context) error {
	if isPortInUse(l.cfg.CDPAddress, l.cfg.CDPPort) {
		slog.Info("browser already running, skipping launch",
			"address", l.cfg.CDPAddress, "port", l.cfg.CDPPort)
		return nil
	}

	browserPath, err := detectBrowser()
	if err != nil {
		return err
	}
	slog.Info("detected browser", "path", browserPath)

	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", l.cfg.CDPPort),
		fmt.Sprintf("--remote-debugging-address=%s", l.cfg.CDPAddress),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-dev-shm-usage",
		fmt.Sprintf("--window-size=%s", l.cfg.WindowSize),
	}
	if l.cfg.ProfileDir != "" {
		if err := os.MkdirAll(l.cfg.ProfileDir, 0o755); err != nil {
			return fmt.Errorf("create profile dir: %w", err)
		}
		args = append(args, fmt.Sprintf("--user-data-dir=%s", l.cfg.ProfileDir))
	}
	if l.cfg.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, "about:blank")

	l.cmd = exec.Command(browserPath, args...)
	l.cmd.Stdout = os.Stdout
	l.cmd.Stderr = os.Stderr

	if err := l.cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	l.running = true
	slog.Info("browser process started", "pid", l.cmd.Process.Pid)

	if err := l.waitForCDP(ctx); err != nil {
		l.Stop()
		return fmt.Errorf("waiting for CDP: %w", err)
	}
	slog.Info("CDP endpoint ready", "cdp_url", l.CDPURL())
	return nil
}

// waitForCDP polls /json/version until it answers 200.
func (l *Launcher) waitForCDP(ctx context.Context) error {
	url := l.CDPURL() + "/json/version"
	deadline := time.After(l.cfg.ReadyTimeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	client := &http.Client{Timeout: time.Second}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("CDP did not become ready within %s at %s", l.cfg.ReadyTimeout, url)
		case <-ticker.C:
			resp, err := client.Get(url)
			if err != nil {
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
	}
}

// Running reports whether this launcher spawned a browser process.
func (l *Launcher) Running() bool {
	return l.running
}

// Stop terminates the browser with SIGTERM, falling back to SIGKILL.
func (l *Launcher) Stop() {
	if l.cmd == nil || l.cmd.Process == nil || !l.running {
		return
	}
	slog.Info("stopping browser", "pid", l.cmd.Process.Pid)
	_ = l.cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_ = l.cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("browser stopped gracefully")
	case <-time.After(5 * time.Second):
		slog.Warn("browser did not exit, sending SIGKILL")
		_ = l.cmd.Process.Kill()
		<-done
	}
	l.running = false
}
