// Package browser drives Chromium over CDP with chromedp and exposes each tab
// as a page.Session.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
)

// Options selects between attaching to a running browser and starting one.
type Options struct {
	// RemoteURL attaches to an existing CDP endpoint when set.
	RemoteURL  string
	Headless   bool
	WindowSize string
	UserAgent  string
	ProfileDir string
}

// Browser owns the allocator and the root browser context. Sessions are
// opened as separate tabs of the same browser.
type Browser struct {
	opts Options

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Start connects to (or launches) the browser.
func Start(ctx context.Context, opts Options) (*Browser, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc

	if opts.RemoteURL != "" {
		slog.Info("connecting to browser", "cdp_url", opts.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		execOpts, err := execAllocatorOptions(opts)
		if err != nil {
			return nil, err
		}
		slog.Info("starting browser", "headless", opts.Headless, "window_size", opts.WindowSize)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), execOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// The first Run binds the browser to browserCtx, so it must not be given a
	// derived context; ctx only bounds how long we wait for it.
	if err := firstRun(ctx, browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, page.NewError(page.CodeSessionUnavailable, "start browser", err)
	}

	return &Browser{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func execAllocatorOptions(opts Options) ([]chromedp.ExecAllocatorOption, error) {
	execOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	execOpts = append(execOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.WindowSize != "" {
		w, h, err := ParseWindowSize(opts.WindowSize)
		if err != nil {
			return nil, err
		}
		execOpts = append(execOpts, chromedp.WindowSize(w, h))
	}
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ProfileDir != "" {
		execOpts = append(execOpts, chromedp.UserDataDir(opts.ProfileDir))
	}
	return execOpts, nil
}

// ParseWindowSize parses "W,H" (or "WxH") into pixel dimensions.
func ParseWindowSize(v string) (int, int, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(v), func(r rune) bool { return r == ',' || r == 'x' || r == 'X' })
	if len(parts) != 2 {
		return 0, 0, page.NewError(page.CodeValidation, fmt.Sprintf("invalid window size %q", v), nil)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, page.NewError(page.CodeValidation, fmt.Sprintf("invalid window size %q", v), nil)
	}
	return w, h, nil
}

// NewSession opens a fresh tab. The tab is closed by Session.Close.
func (b *Browser) NewSession(ctx context.Context) (page.Session, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, page.NewError(page.CodeSessionUnavailable, "browser is closed", nil)
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	if err := firstRun(ctx, tabCtx, network.Enable(), network.SetCacheDisabled(true), cdppage.Enable()); err != nil {
		tabCancel()
		return nil, page.NewError(page.CodeSessionUnavailable, "open tab", err)
	}
	s := &Session{ctx: tabCtx, cancel: tabCancel}
	chromedp.ListenTarget(tabCtx, s.onEvent)
	slog.Debug("browser tab opened")
	return s, nil
}

// firstRun performs the allocating Run on target while waiting at most as
// long as ctx allows. On timeout the caller cancels target.
func firstRun(ctx, target context.Context, actions ...chromedp.Action) error {
	errCh := make(chan error, 1)
	go func() { errCh <- chromedp.Run(target, actions...) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the browser down, or detaches when it was attached remotely.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.browserCancel()
	b.allocCancel()
	slog.Info("browser closed")
	return nil
}
