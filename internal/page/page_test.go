package page

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSession struct {
	opened      []string
	current     string
	visibleFrom map[string]int // locator value -> IsVisible call count after which it is visible
	calls       map[string]int
	hrefs       map[string]string
	clickTo     map[string]string
	openErr     error
	visibleErr  error
	closed      bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		visibleFrom: map[string]int{},
		calls:       map[string]int{},
		hrefs:       map[string]string{},
		clickTo:     map[string]string{},
	}
}

func (f *fakeSession) Open(_ context.Context, rawURL string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, rawURL)
	f.current = rawURL
	return nil
}

func (f *fakeSession) Resolve(_ context.Context, loc Locator) (string, error) {
	href, ok := f.hrefs[loc.Value]
	if !ok {
		return "", NewError(CodeElementNotFound, "no visible element for "+loc.String(), nil)
	}
	return href, nil
}

func (f *fakeSession) Click(_ context.Context, loc Locator) error {
	if dest, ok := f.clickTo[loc.Value]; ok {
		f.current = dest
		return nil
	}
	return NewError(CodeElementNotFound, "no visible element for "+loc.String(), nil)
}

func (f *fakeSession) IsVisible(_ context.Context, loc Locator) (bool, error) {
	f.calls[loc.Value]++
	if f.visibleErr != nil {
		return false, f.visibleErr
	}
	after, ok := f.visibleFrom[loc.Value]
	if !ok {
		return false, nil
	}
	return f.calls[loc.Value] > after, nil
}

func (f *fakeSession) CurrentURL(context.Context) (string, error) { return f.current, nil }

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func testOptions() Options {
	return Options{
		BaseURL:      "https://www.example.org",
		ReadyTimeout: 200 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	}
}

func TestGoToWaitsForReadyElement(t *testing.T) {
	s := newFakeSession()
	s.visibleFrom["main-feature"] = 3

	p := New(s, Definition{Name: "contribute", Path: "/en-US/contribute/", Ready: ID("main-feature")}, testOptions())
	if err := p.GoTo(context.Background()); err != nil {
		t.Fatalf("GoTo() error = %v", err)
	}
	if got, want := s.opened[0], "https://www.example.org/en-US/contribute/"; got != want {
		t.Fatalf("opened = %q; want %q", got, want)
	}
	if got := s.calls["main-feature"]; got != 4 {
		t.Fatalf("IsVisible calls = %d; want 4", got)
	}
}

func TestGoToTimesOutWhenReadyElementNeverAppears(t *testing.T) {
	s := newFakeSession()
	p := New(s, Definition{Name: "contribute", Path: "/", Ready: ID("main-feature")}, testOptions())

	err := p.GoTo(context.Background())
	if err == nil {
		t.Fatal("GoTo() = nil; want navigation timeout")
	}
	var coded *CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("GoTo() error type = %T; want *CodedError", err)
	}
	if coded.Code != CodeNavigationTimeout {
		t.Fatalf("GoTo() code = %s; want %s", coded.Code, CodeNavigationTimeout)
	}
	if !strings.Contains(coded.Message, "id=main-feature") {
		t.Fatalf("GoTo() message = %q; want ready locator", coded.Message)
	}
}

func TestGoToReturnsParentCancellation(t *testing.T) {
	s := newFakeSession()
	p := New(s, Definition{Name: "contribute", Path: "/", Ready: ID("main-feature")}, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.GoTo(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("GoTo() error = %v; want context.Canceled", err)
	}
}

func TestGoToMapsOpenDeadlineToNavigationTimeout(t *testing.T) {
	s := newFakeSession()
	s.openErr = context.DeadlineExceeded
	p := New(s, Definition{Name: "contribute", Path: "/", Ready: ID("main-feature")}, testOptions())

	if err := p.GoTo(context.Background()); !HasCode(err, CodeNavigationTimeout) {
		t.Fatalf("GoTo() error = %v; want %s", err, CodeNavigationTimeout)
	}
}

func TestClickReturnsNextPageHandle(t *testing.T) {
	s := newFakeSession()
	s.clickTo["a.signup"] = "https://www.example.org/en-US/contribute/signup/"
	s.visibleFrom["help-form"] = 0

	p := New(s, Definition{Name: "contribute", Path: "/", Ready: ID("main-feature")}, testOptions())
	next, err := p.Click(context.Background(), CSS("a.signup"), Definition{Name: "signup", Path: "/en-US/contribute/signup/", Ready: ID("help-form")})
	if err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if got, want := next.Definition().Name, "signup"; got != want {
		t.Fatalf("next page = %q; want %q", got, want)
	}
	if next.Session() != Session(s) {
		t.Fatal("next page does not share the session")
	}
}

func TestLinkDestinationPropagatesElementNotFound(t *testing.T) {
	s := newFakeSession()
	p := New(s, Definition{Name: "contribute", Path: "/", Ready: ID("main-feature")}, testOptions())

	_, err := p.LinkDestination(context.Background(), CSS("#missing"))
	if !HasCode(err, CodeElementNotFound) {
		t.Fatalf("LinkDestination() error = %v; want %s", err, CodeElementNotFound)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://www.mozilla.org", "/en-US/contribute/", "https://www.mozilla.org/en-US/contribute/"},
		{"https://www.mozilla.org/", "en-US/contribute/", "https://www.mozilla.org/en-US/contribute/"},
		{"http://127.0.0.1:8080/base/", "/en-US/", "http://127.0.0.1:8080/en-US/"},
	}
	for _, tt := range tests {
		got, err := JoinURL(tt.base, tt.path)
		if err != nil {
			t.Fatalf("JoinURL(%q, %q) error = %v", tt.base, tt.path, err)
		}
		if got != tt.want {
			t.Fatalf("JoinURL(%q, %q) = %q; want %q", tt.base, tt.path, got, tt.want)
		}
	}

	if _, err := JoinURL("www.mozilla.org", "/"); !HasCode(err, CodeValidation) {
		t.Fatalf("JoinURL(relative base) error = %v; want %s", err, CodeValidation)
	}
}

func TestLocatorValidate(t *testing.T) {
	if err := CSS("#footer a").Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := (Locator{By: ByXPath, Value: " "}).Validate(); err == nil {
		t.Fatal("Validate() = nil; want error for blank value")
	}
	if err := (Locator{By: "tag", Value: "a"}).Validate(); err == nil {
		t.Fatal("Validate() = nil; want error for unknown strategy")
	}
}

func TestWaitVisibleReportsFalseOnTimeout(t *testing.T) {
	s := newFakeSession()
	s.visibleFrom["help-form"] = 2
	p := New(s, Definition{Name: "signup", Path: "/", Ready: ID("help-form")}, testOptions())

	ok, err := p.WaitVisible(context.Background(), ID("help-form"), 0)
	if err != nil || !ok {
		t.Fatalf("WaitVisible(help-form) = %v, %v; want true, nil", ok, err)
	}

	ok, err = p.WaitVisible(context.Background(), ID("missing"), 20*time.Millisecond)
	if err != nil || ok {
		t.Fatalf("WaitVisible(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestLoadDoesNotWaitForReadyElement(t *testing.T) {
	s := newFakeSession()
	p := New(s, Definition{Name: "signup", Path: "/en-US/contribute/signup/", Ready: ID("help-form")}, testOptions())

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := s.calls["help-form"]; got != 0 {
		t.Fatalf("IsVisible calls = %d; want 0", got)
	}
}

func TestGoToFailsFastWhenSessionIsLost(t *testing.T) {
	s := newFakeSession()
	s.visibleErr = NewError(CodeSessionUnavailable, "tab crashed", nil)
	opts := testOptions()
	opts.ReadyTimeout = 2 * time.Second
	p := New(s, Definition{Name: "contribute", Path: "/", Ready: ID("main-feature")}, opts)

	started := time.Now()
	err := p.GoTo(context.Background())
	if !HasCode(err, CodeSessionUnavailable) {
		t.Fatalf("GoTo() error = %v; want %s", err, CodeSessionUnavailable)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("GoTo() took %s; want it to stop polling on a lost session", elapsed)
	}
	if got := s.calls["main-feature"]; got != 1 {
		t.Fatalf("IsVisible calls = %d; want 1", got)
	}
}
