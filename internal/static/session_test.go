package static

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/sitefixture"
)

func openContribute(t *testing.T, opts sitefixture.Options) (*Session, string) {
	t.Helper()
	srv := sitefixture.NewServer(opts)
	t.Cleanup(srv.Close)

	s := New(Options{Timeout: 2 * time.Second})
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Open(context.Background(), srv.URL+sitefixture.ContributePath); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s, srv.URL
}

func TestResolveReturnsAbsoluteHref(t *testing.T) {
	s, base := openContribute(t, sitefixture.Options{})

	got, err := s.Resolve(context.Background(), page.CSS("#colophon .footer-license a[href*='/privacy/']"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := base + "/en-US/privacy/"; got != want {
		t.Fatalf("Resolve() = %q; want %q", got, want)
	}
}

func TestIsVisibleHonoursHiddenAncestor(t *testing.T) {
	s, _ := openContribute(t, sitefixture.Options{})
	ctx := context.Background()
	loc := page.CSS("#tabzilla-nav ul > li:nth-child(1) li:nth-child(1) > a")

	visible, err := s.IsVisible(ctx, loc)
	if err != nil {
		t.Fatalf("IsVisible() error = %v", err)
	}
	if visible {
		t.Fatal("IsVisible() = true before toggling the panel")
	}

	if err := s.Click(ctx, page.ID("tabzilla")); err != nil {
		t.Fatalf("Click(tabzilla) error = %v", err)
	}
	visible, err = s.IsVisible(ctx, loc)
	if err != nil {
		t.Fatalf("IsVisible() error = %v", err)
	}
	if !visible {
		t.Fatal("IsVisible() = false after toggling the panel")
	}
}

func TestIsVisibleMissingElementIsFalse(t *testing.T) {
	s, _ := openContribute(t, sitefixture.Options{})
	visible, err := s.IsVisible(context.Background(), page.ID("does-not-exist"))
	if err != nil || visible {
		t.Fatalf("IsVisible() = %v, %v; want false, nil", visible, err)
	}
}

func TestResolveMissingElement(t *testing.T) {
	s, _ := openContribute(t, sitefixture.Options{})
	_, err := s.Resolve(context.Background(), page.CSS("#colophon a.nope"))
	if !page.HasCode(err, page.CodeElementNotFound) {
		t.Fatalf("Resolve() error = %v; want %s", err, page.CodeElementNotFound)
	}
}

func TestClickFollowsLink(t *testing.T) {
	s, base := openContribute(t, sitefixture.Options{})
	ctx := context.Background()

	if err := s.Click(ctx, page.CSS("#main-feature a.signup")); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	current, err := s.CurrentURL(ctx)
	if err != nil {
		t.Fatalf("CurrentURL() error = %v", err)
	}
	if want := base + sitefixture.SignupPath; current != want {
		t.Fatalf("CurrentURL() = %q; want %q", current, want)
	}
	visible, err := s.IsVisible(ctx, page.ID("help-form"))
	if err != nil || !visible {
		t.Fatalf("IsVisible(help-form) = %v, %v; want true", visible, err)
	}
}

func TestHiddenFieldAndLocatorStrategies(t *testing.T) {
	srv := sitefixture.NewServer(sitefixture.Options{HiddenFields: []string{"id_comments"}})
	defer srv.Close()

	s := New(Options{})
	defer func() { _ = s.Close() }()
	ctx := context.Background()
	if err := s.Open(ctx, srv.URL+sitefixture.SignupPath); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		loc  page.Locator
		want bool
	}{
		{page.ID("id_email"), true},
		{page.ID("id_comments"), false},
		{page.Locator{By: page.ByName, Value: "interest"}, true},
		{page.Locator{By: page.ByCSS, Value: "form#help-form button"}, true},
	}
	for _, tt := range tests {
		got, err := s.IsVisible(ctx, tt.loc)
		if err != nil {
			t.Fatalf("IsVisible(%s) error = %v", tt.loc, err)
		}
		if got != tt.want {
			t.Fatalf("IsVisible(%s) = %v; want %v", tt.loc, got, tt.want)
		}
	}

	_, err := s.IsVisible(ctx, page.Locator{By: page.ByXPath, Value: "//form"})
	if !page.HasCode(err, page.CodeValidation) {
		t.Fatalf("IsVisible(xpath) error = %v; want %s", err, page.CodeValidation)
	}
}

func TestLinkTextLocators(t *testing.T) {
	s, base := openContribute(t, sitefixture.Options{})
	ctx := context.Background()

	got, err := s.Resolve(ctx, page.Locator{By: page.ByLinkText, Value: "Partner with Us"})
	if err != nil {
		t.Fatalf("Resolve(link_text) error = %v", err)
	}
	if want := base + "/en-US/about/partnerships/"; got != want {
		t.Fatalf("Resolve(link_text) = %q; want %q", got, want)
	}
	got, err = s.Resolve(ctx, page.Locator{By: page.ByPartialLinkText, Value: "Trademark"})
	if err != nil {
		t.Fatalf("Resolve(partial_link_text) error = %v", err)
	}
	if !strings.HasSuffix(got, "/en-US/legal/fraud-report/index.html") {
		t.Fatalf("Resolve(partial_link_text) = %q", got)
	}
}

func TestOpenNotFoundIsNetworkError(t *testing.T) {
	srv := sitefixture.NewServer(sitefixture.Options{Missing: []string{sitefixture.SignupPath}})
	defer srv.Close()

	s := New(Options{})
	err := s.Open(context.Background(), srv.URL+sitefixture.SignupPath)
	if !page.HasCode(err, page.CodeNetwork) {
		t.Fatalf("Open() error = %v; want %s", err, page.CodeNetwork)
	}
}

func TestClosedSessionIsUnavailable(t *testing.T) {
	s, _ := openContribute(t, sitefixture.Options{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.CurrentURL(context.Background()); !page.HasCode(err, page.CodeSessionUnavailable) {
		t.Fatalf("CurrentURL() after Close error = %v; want %s", err, page.CodeSessionUnavailable)
	}
}

func TestHiddenStyle(t *testing.T) {
	tests := map[string]bool{
		"":                            false,
		"display: none":               true,
		"color: red; display:NONE;":   true,
		"visibility: hidden":          true,
		"display: block":              false,
		"display: none !important":    true,
		"visibility:hidden!IMPORTANT": true,
		"display: block !important":   false,
	}
	for style, want := range tests {
		if got := hiddenStyle(style); got != want {
			t.Fatalf("hiddenStyle(%q) = %v; want %v", style, got, want)
		}
	}
}
