package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

const defaultPollInterval = 100 * time.Millisecond

// Session is a live (or simulated) page-rendering connection. One Session is
// owned by exactly one scenario and released with Close when it ends.
type Session interface {
	// Open loads rawURL in the session without waiting for any page marker.
	Open(ctx context.Context, rawURL string) error
	// Resolve returns the destination of the first visible element matching
	// loc, resolved against the current document URL.
	Resolve(ctx context.Context, loc Locator) (string, error)
	// Click performs a UI click on the first visible element matching loc.
	Click(ctx context.Context, loc Locator) error
	// IsVisible reports whether any element matching loc is visible.
	IsVisible(ctx context.Context, loc Locator) (bool, error)
	// CurrentURL returns the URL of the document currently loaded.
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// Screenshotter is implemented by sessions able to capture the rendered page.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Definition names a page and the element whose presence means it is ready.
type Definition struct {
	Name  string  `json:"name" yaml:"name"`
	Path  string  `json:"path" yaml:"path"`
	Ready Locator `json:"ready" yaml:"ready"`
}

// Options controls how a Page waits on its session.
type Options struct {
	BaseURL      string
	ReadyTimeout time.Duration
	// ElementTimeout bounds WaitVisible when callers pass no timeout.
	ElementTimeout time.Duration
	PollInterval   time.Duration
}

// Page is a handle to one named page rendered in a Session.
type Page struct {
	def     Definition
	session Session
	opts    Options
}

// New creates a Page handle. Nothing is loaded until GoTo is called.
func New(session Session, def Definition, opts Options) *Page {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 30 * time.Second
	}
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = 5 * time.Second
	}
	return &Page{def: def, session: session, opts: opts}
}

func (p *Page) Definition() Definition { return p.def }

func (p *Page) Session() Session { return p.session }

// URL returns the absolute URL of the page definition.
func (p *Page) URL() (string, error) {
	return JoinURL(p.opts.BaseURL, p.def.Path)
}

// GoTo loads the page and blocks until its ready element is visible, failing
// with NAVIGATION_TIMEOUT once ReadyTimeout has elapsed.
func (p *Page) GoTo(ctx context.Context) error {
	target, err := p.URL()
	if err != nil {
		return err
	}
	navCtx, cancel := context.WithTimeout(ctx, p.opts.ReadyTimeout)
	defer cancel()
	if err := p.open(navCtx, target); err != nil {
		return err
	}
	return p.waitReady(navCtx)
}

// Load opens the page without waiting for its ready element.
func (p *Page) Load(ctx context.Context) error {
	target, err := p.URL()
	if err != nil {
		return err
	}
	navCtx, cancel := context.WithTimeout(ctx, p.opts.ReadyTimeout)
	defer cancel()
	return p.open(navCtx, target)
}

func (p *Page) open(ctx context.Context, target string) error {
	slog.Debug("page navigate", "page", p.def.Name, "url", target)
	if err := p.session.Open(ctx, target); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewError(CodeNavigationTimeout, fmt.Sprintf("%s did not load within %s", target, p.opts.ReadyTimeout), err)
		}
		return err
	}
	return nil
}

// WaitReady blocks until the ready element of the page is visible.
func (p *Page) WaitReady(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.opts.ReadyTimeout)
	defer cancel()
	return p.waitReady(waitCtx)
}

func (p *Page) waitReady(ctx context.Context) error {
	err := p.poll(ctx, p.def.Ready)
	var nv *notVisibleError
	if errors.As(err, &nv) {
		msg := fmt.Sprintf("page %q not ready: %s never became visible", p.def.Name, p.def.Ready)
		return NewError(CodeNavigationTimeout, msg, nv.last)
	}
	if err == nil {
		slog.Debug("page ready", "page", p.def.Name, "ready", p.def.Ready.String())
	}
	return err
}

// WaitVisible polls loc until it is visible or timeout elapses. Running out of
// time reports false without an error. A non-positive timeout means
// ElementTimeout.
func (p *Page) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = p.opts.ElementTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := p.poll(waitCtx, loc)
	var nv *notVisibleError
	if errors.As(err, &nv) {
		return false, nil
	}
	return err == nil, err
}

type notVisibleError struct{ last error }

func (e *notVisibleError) Error() string { return "element never became visible" }

// poll returns nil once loc is visible and *notVisibleError when ctx's own
// deadline passes first. Validation and session errors return as-is, as does
// parent cancellation.
func (p *Page) poll(ctx context.Context, loc Locator) error {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		visible, err := p.session.IsVisible(ctx, loc)
		if err == nil && visible {
			return nil
		}
		if err != nil {
			if HasCode(err, CodeValidation) || HasCode(err, CodeSessionUnavailable) {
				return err
			}
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if parentErr := context.Cause(ctx); parentErr != nil && !errors.Is(parentErr, context.DeadlineExceeded) {
				return parentErr
			}
			return &notVisibleError{last: lastErr}
		case <-ticker.C:
		}
	}
}

// LinkDestination returns the rendered destination URL of the link at loc.
func (p *Page) LinkDestination(ctx context.Context, loc Locator) (string, error) {
	return p.session.Resolve(ctx, loc)
}

// IsVisible reports whether the element at loc is visible on this page.
func (p *Page) IsVisible(ctx context.Context, loc Locator) (bool, error) {
	return p.session.IsVisible(ctx, loc)
}

// Click clicks loc and returns a handle to next once next's ready element is
// visible in the same session.
func (p *Page) Click(ctx context.Context, loc Locator, next Definition) (*Page, error) {
	if err := p.session.Click(ctx, loc); err != nil {
		return nil, err
	}
	nextPage := New(p.session, next, p.opts)
	if err := nextPage.WaitReady(ctx); err != nil {
		return nil, err
	}
	if current, err := p.session.CurrentURL(ctx); err == nil {
		slog.Debug("page click navigated", "from", p.def.Name, "to", next.Name, "url", current)
	}
	return nextPage, nil
}

// Toggle clicks loc without expecting a navigation.
func (p *Page) Toggle(ctx context.Context, loc Locator) error {
	return p.session.Click(ctx, loc)
}

// JoinURL resolves path against base. Absolute paths replace the base path.
func JoinURL(base, path string) (string, error) {
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", NewError(CodeValidation, fmt.Sprintf("invalid base url %q", base), err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return "", NewError(CodeValidation, fmt.Sprintf("base url %q must be absolute", base), nil)
	}
	ref, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return "", NewError(CodeValidation, fmt.Sprintf("invalid page path %q", path), err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
