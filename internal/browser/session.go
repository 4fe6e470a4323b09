package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
)

// Session is one browser tab.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

var (
	_ page.Session       = (*Session)(nil)
	_ page.Screenshotter = (*Session)(nil)
)

// run executes actions on the tab bounded by ctx. Cancelling ctx aborts the
// actions without closing the tab.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return page.NewError(page.CodeSessionUnavailable, "session is closed", nil)
	}
	return nil
}

func (s *Session) eval(ctx context.Context, expr string, loc page.Locator, out any) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}
	var raw string
	if err := s.run(ctx, chromedp.Evaluate(expr, &raw)); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return page.NewError(page.CodeSessionUnavailable, fmt.Sprintf("evaluate %s", loc), err)
	}
	return decodeEnvelope(raw, loc, out)
}

func (s *Session) Open(ctx context.Context, rawURL string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.Navigate(rawURL)); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return page.NewError(page.CodeNetwork, fmt.Sprintf("navigate to %s", rawURL), err)
	}
	return nil
}

func (s *Session) Resolve(ctx context.Context, loc page.Locator) (string, error) {
	var href string
	if err := s.eval(ctx, jsResolve(loc), loc, &href); err != nil {
		return "", err
	}
	return href, nil
}

func (s *Session) Click(ctx context.Context, loc page.Locator) error {
	return s.eval(ctx, jsClick(loc), loc, nil)
}

func (s *Session) IsVisible(ctx context.Context, loc page.Locator) (bool, error) {
	var visible bool
	if err := s.eval(ctx, jsIsVisible(loc), loc, &visible); err != nil {
		return false, err
	}
	return visible, nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	var u string
	if err := s.run(ctx, chromedp.Location(&u)); err != nil {
		return "", page.NewError(page.CodeSessionUnavailable, "read location", err)
	}
	return u, nil
}

// Screenshot captures the full page as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, page.NewError(page.CodeSessionUnavailable, "capture screenshot", err)
	}
	return buf, nil
}

// Close closes the tab. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cancel()
		slog.Debug("browser tab closed")
	})
	return nil
}

func (s *Session) onEvent(ev any) {
	switch e := ev.(type) {
	case *cdppage.EventFrameNavigated:
		if e.Frame.ParentID == "" {
			slog.Debug("tab navigated", "url", truncateURL(e.Frame.URL))
		}
	case *network.EventResponseReceived:
		if e.Type == network.ResourceTypeDocument && e.Response.Status >= 400 {
			slog.Warn("document response not ok", "url", truncateURL(e.Response.URL), "status", e.Response.Status)
		}
	case *network.EventLoadingFailed:
		if e.Type == network.ResourceTypeDocument {
			slog.Warn("document load failed", "error", e.ErrorText)
		}
	}
}

func truncateURL(url string) string {
	if len(url) > 120 {
		return url[:120] + "..."
	}
	return url
}
