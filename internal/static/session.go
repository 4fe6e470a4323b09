// Package static implements page.Session over plain HTTP and goquery. It does
// not run scripts, so visibility is inferred from markup alone.
package static

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
)

const defaultTimeout = 30 * time.Second

// Options configures a static Session.
type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
}

// Session holds the most recently loaded document.
type Session struct {
	client    *http.Client
	userAgent string

	mu     sync.Mutex
	doc    *goquery.Document
	base   *url.URL
	closed bool
}

var _ page.Session = (*Session)(nil)

func New(opts Options) *Session {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Session{client: client, userAgent: opts.UserAgent}
}

func (s *Session) Open(ctx context.Context, rawURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed()
	}
	return s.load(ctx, rawURL)
}

func (s *Session) load(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return page.NewError(page.CodeValidation, fmt.Sprintf("invalid url %q", rawURL), err)
	}
	req.Header.Set("Accept", "text/html")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("load %s: %w", rawURL, context.DeadlineExceeded)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return page.NewError(page.CodeNetwork, fmt.Sprintf("load %s", rawURL), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return page.NewError(page.CodeNetwork, fmt.Sprintf("load %s: status %d", rawURL, resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return page.NewError(page.CodeNetwork, fmt.Sprintf("parse %s", rawURL), err)
	}
	base := resp.Request.URL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := base.Parse(href); err == nil {
			base = ref
		}
	}
	s.doc = doc
	s.base = base
	slog.Debug("static page loaded", "url", base.String(), "status", resp.StatusCode)
	return nil
}

func (s *Session) Resolve(_ context.Context, loc page.Locator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.firstVisible(loc)
	if err != nil {
		return "", err
	}
	href, ok := el.Attr("href")
	if !ok {
		return "", page.NewError(page.CodeElementNotFound, fmt.Sprintf("element %s has no href", loc), nil)
	}
	ref, err := s.base.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", page.NewError(page.CodeValidation, fmt.Sprintf("element %s has invalid href %q", loc, href), err)
	}
	return ref.String(), nil
}

// Click follows anchors. An element carrying aria-controls toggles the hidden
// attribute of the element it controls instead.
func (s *Session) Click(ctx context.Context, loc page.Locator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, err := s.firstVisible(loc)
	if err != nil {
		return err
	}

	if target, ok := el.Attr("aria-controls"); ok && target != "" {
		panel := s.doc.Find("[id]").FilterFunction(attrEquals("id", target)).First()
		if panel.Length() == 0 {
			return page.NewError(page.CodeElementNotFound, fmt.Sprintf("controlled element %q not found", target), nil)
		}
		if _, hidden := panel.Attr("hidden"); hidden {
			panel.RemoveAttr("hidden")
			el.SetAttr("aria-expanded", "true")
		} else {
			panel.SetAttr("hidden", "")
			el.SetAttr("aria-expanded", "false")
		}
		return nil
	}

	href, ok := el.Attr("href")
	if goquery.NodeName(el) != "a" || !ok {
		return nil
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return nil
	}
	next, err := s.base.Parse(href)
	if err != nil {
		return page.NewError(page.CodeValidation, fmt.Sprintf("element %s has invalid href %q", loc, href), err)
	}
	return s.load(ctx, next.String())
}

// IsVisible reports false, without error, when nothing matches loc.
func (s *Session) IsVisible(_ context.Context, loc page.Locator) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.firstVisible(loc)
	if page.HasCode(err, page.CodeElementNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Session) CurrentURL(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errClosed()
	}
	if s.base == nil {
		return "", page.NewError(page.CodeSessionUnavailable, "no document loaded", nil)
	}
	return s.base.String(), nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.doc = nil
	return nil
}

func (s *Session) firstVisible(loc page.Locator) (*goquery.Selection, error) {
	if s.closed {
		return nil, errClosed()
	}
	if s.doc == nil {
		return nil, page.NewError(page.CodeSessionUnavailable, "no document loaded", nil)
	}
	matches, err := find(s.doc, loc)
	if err != nil {
		return nil, err
	}
	var found *goquery.Selection
	matches.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if visible(sel) {
			found = sel
			return false
		}
		return true
	})
	if found == nil {
		return nil, page.NewError(page.CodeElementNotFound, fmt.Sprintf("no visible element for %s", loc), nil)
	}
	return found, nil
}

func find(doc *goquery.Document, loc page.Locator) (*goquery.Selection, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	switch loc.By {
	case page.ByCSS:
		return doc.Find(loc.Value), nil
	case page.ByID:
		return doc.Find("[id]").FilterFunction(attrEquals("id", loc.Value)), nil
	case page.ByName:
		return doc.Find("[name]").FilterFunction(attrEquals("name", loc.Value)), nil
	case page.ByLinkText:
		return doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return strings.TrimSpace(sel.Text()) == loc.Value
		}), nil
	case page.ByPartialLinkText:
		return doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return strings.Contains(sel.Text(), loc.Value)
		}), nil
	default:
		return nil, page.NewError(page.CodeValidation, fmt.Sprintf("locator strategy %q is not supported by the static session", loc.By), nil)
	}
}

func attrEquals(name, value string) func(int, *goquery.Selection) bool {
	return func(_ int, sel *goquery.Selection) bool {
		v, _ := sel.Attr(name)
		return v == value
	}
}

// visible walks sel and its ancestors looking for markup that hides it.
func visible(sel *goquery.Selection) bool {
	if goquery.NodeName(sel) == "input" {
		if t, _ := sel.Attr("type"); strings.EqualFold(t, "hidden") {
			return false
		}
	}
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if _, ok := cur.Attr("hidden"); ok {
			return false
		}
		style, _ := cur.Attr("style")
		if hiddenStyle(style) {
			return false
		}
	}
	return true
}

func hiddenStyle(style string) bool {
	if style == "" {
		return false
	}
	compact := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	for _, decl := range strings.Split(compact, ";") {
		switch strings.TrimSuffix(decl, "!important") {
		case "display:none", "visibility:hidden":
			return true
		}
	}
	return false
}

func errClosed() error {
	return page.NewError(page.CodeSessionUnavailable, "session is closed", nil)
}
